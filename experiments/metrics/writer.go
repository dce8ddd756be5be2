package metrics

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/arixlin/hearthstone-ai/config"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

type GameRecord struct {
	ID          int
	Agent1      int // AgentConfig.ID seated as player 1
	Agent2      int // AgentConfig.ID seated as player 2
	WinnerAgent int // AgentConfig.ID, 0 for a draw or an unfinished game
	GameMetric
}

type MoveRecord struct {
	Game  int // GameRecord.ID
	Agent int // AgentConfig.ID
	MoveMetric
}

// Writer stores the results of one experiment run under its own directory.
type Writer struct {
	runID   string
	baseDir string
}

// NewWriter creates <outputDir>/<experiment>/<run id>.
func NewWriter(outputDir, experiment string) (*Writer, error) {
	runID := uuid.New().String()
	baseDir := filepath.Join(outputDir, experiment, runID)
	err := os.MkdirAll(baseDir, 0755)
	if err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	return &Writer{
		runID:   runID,
		baseDir: baseDir,
	}, nil
}

func (w *Writer) RunID() string {
	return w.runID
}

func (w *Writer) Dir() string {
	return w.baseDir
}

// WriteConfig stores the configuration the run was started with.
func (w *Writer) WriteConfig(cfg *config.Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	path := filepath.Join(w.baseDir, "config.yaml")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

func (w *Writer) WriteAgentConfigs(configs []config.AgentConfig) error {
	header := []string{"run", "id", "kind", "goroutines", "duration", "episodes", "cutoff", "exploration"}
	rows := make([][]string, 0, len(configs))
	for _, c := range configs {
		rows = append(rows, []string{
			w.runID,
			strconv.Itoa(c.ID),
			c.Kind,
			strconv.Itoa(c.Goroutines),
			c.Duration.String(),
			strconv.Itoa(c.Episodes),
			strconv.Itoa(c.Cutoff),
			strconv.FormatFloat(c.Exploration, 'f', -1, 64),
		})
	}
	return w.writeCSV("agent_configs.csv", header, rows)
}

func (w *Writer) WriteGameRecords(records []GameRecord) error {
	header := []string{"run", "id", "agent1", "agent2", "starting_player", "winner", "winner_agent", "result", "total_moves", "start_time", "end_time", "duration"}
	rows := make([][]string, 0, len(records))
	for _, record := range records {
		rows = append(rows, []string{
			w.runID,
			strconv.Itoa(record.ID),
			strconv.Itoa(record.Agent1),
			strconv.Itoa(record.Agent2),
			strconv.Itoa(record.StartingPlayer),
			strconv.Itoa(record.Winner),
			strconv.Itoa(record.WinnerAgent),
			record.Result,
			strconv.Itoa(record.TotalMoves),
			record.StartTime.Format(time.RFC3339),
			record.EndTime.Format(time.RFC3339),
			record.Duration.String(),
		})
	}
	return w.writeCSV("game_records.csv", header, rows)
}

func (w *Writer) WriteMoveRecords(records []MoveRecord) error {
	header := []string{"run", "game", "step", "player", "agent", "goroutines", "duration", "episodes", "full_playouts", "new_nodes", "tree_size", "is_tree_reset"}
	rows := make([][]string, 0, len(records))
	for _, record := range records {
		rows = append(rows, []string{
			w.runID,
			strconv.Itoa(record.Game),
			strconv.Itoa(record.Step),
			strconv.Itoa(record.Player),
			strconv.Itoa(record.Agent),
			strconv.Itoa(record.Goroutines),
			record.Duration.String(),
			strconv.Itoa(record.Episodes),
			strconv.Itoa(record.FullPlayouts),
			strconv.Itoa(record.NewNodes),
			strconv.Itoa(record.TreeSize),
			strconv.FormatBool(record.IsTreeReset),
		})
	}
	return w.writeCSV("move_records.csv", header, rows)
}

func (w *Writer) writeCSV(name string, header []string, rows [][]string) error {
	// Create a file
	path := filepath.Join(w.baseDir, name)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", name, err)
	}
	defer f.Close()

	writer := csv.NewWriter(f)
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write %s header: %w", name, err)
	}
	if err := writer.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to write %s rows: %w", name, err)
	}
	return nil
}
