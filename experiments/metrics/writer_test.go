package metrics

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/arixlin/hearthstone-ai/config"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestWriter(t *testing.T) {
	outputDir := t.TempDir()
	writer, err := NewWriter(outputDir, "smoke")
	require.NoError(t, err)

	_, err = uuid.Parse(writer.RunID())
	require.NoError(t, err, "Run ID should be a UUID")
	require.Equal(t, filepath.Join(outputDir, "smoke", writer.RunID()), writer.Dir())

	t.Run("agent configs", func(t *testing.T) {
		err := writer.WriteAgentConfigs([]config.AgentConfig{
			{ID: 1, Kind: config.KindMCTS, Goroutines: 4, Duration: 10 * time.Millisecond, Cutoff: 20, Exploration: 2},
			{ID: 2, Kind: config.KindRandom},
		})
		require.NoError(t, err)

		rows := readCSV(t, filepath.Join(writer.Dir(), "agent_configs.csv"))
		require.Len(t, rows, 3)
		require.Equal(t, []string{"run", "id", "kind", "goroutines", "duration", "episodes", "cutoff", "exploration"}, rows[0])
		require.Equal(t, []string{writer.RunID(), "1", "mcts", "4", "10ms", "0", "20", "2"}, rows[1])
	})

	t.Run("game records", func(t *testing.T) {
		start := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
		err := writer.WriteGameRecords([]GameRecord{{
			ID:          1,
			Agent1:      2,
			Agent2:      1,
			WinnerAgent: 1,
			GameMetric: GameMetric{
				StartingPlayer: 1,
				Winner:         2,
				Result:         "player2-win",
				StartTime:      start,
				EndTime:        start.Add(time.Second),
				Duration:       time.Second,
				TotalMoves:     30,
			},
		}})
		require.NoError(t, err)

		rows := readCSV(t, filepath.Join(writer.Dir(), "game_records.csv"))
		require.Len(t, rows, 2)
		require.Equal(t, []string{writer.RunID(), "1", "2", "1", "1", "2", "1", "player2-win", "30", "2024-01-01T12:00:00Z", "2024-01-01T12:00:01Z", "1s"}, rows[1])
	})

	t.Run("move records", func(t *testing.T) {
		err := writer.WriteMoveRecords([]MoveRecord{{
			Game:  1,
			Agent: 2,
			MoveMetric: MoveMetric{
				Step:   3,
				Player: 1,
				SearchMetric: SearchMetric{
					Goroutines:   4,
					Duration:     time.Millisecond,
					Episodes:     100,
					FullPlayouts: 40,
					NewNodes:     90,
					TreeSize:     500,
					IsTreeReset:  true,
				},
			},
		}})
		require.NoError(t, err)

		rows := readCSV(t, filepath.Join(writer.Dir(), "move_records.csv"))
		require.Len(t, rows, 2)
		require.Equal(t, []string{writer.RunID(), "1", "3", "1", "2", "4", "1ms", "100", "40", "90", "500", "true"}, rows[1])
	})

	t.Run("config snapshot", func(t *testing.T) {
		cfg := &config.Config{Name: "smoke", Games: 2, Agents: []config.AgentConfig{{ID: 1, Kind: config.KindRandom}}}
		require.NoError(t, writer.WriteConfig(cfg))

		data, err := os.ReadFile(filepath.Join(writer.Dir(), "config.yaml"))
		require.NoError(t, err)
		var stored config.Config
		require.NoError(t, yaml.Unmarshal(data, &stored))
		require.Equal(t, *cfg, stored)
	})
}

func TestCollector(t *testing.T) {
	t.Run("counts a search", func(t *testing.T) {
		c := NewCollector()
		c.Start(2, 50)
		c.SetTreeReset(true)
		c.AddEpisode()
		c.AddEpisode()
		c.AddFullPlayout()
		c.AddNewNode()

		metric := c.Complete(7)
		require.Equal(t, 2, metric.Goroutines)
		require.Equal(t, 50, metric.Cutoff)
		require.Equal(t, 2, metric.Episodes)
		require.Equal(t, 1, metric.FullPlayouts)
		require.Equal(t, 1, metric.NewNodes)
		require.Equal(t, 7, metric.TreeSize)
		require.True(t, metric.IsTreeReset)
	})

	t.Run("start clears the previous search", func(t *testing.T) {
		c := NewCollector()
		c.Start(1, 10)
		c.AddEpisode()
		c.Start(1, 10)

		require.Zero(t, c.Complete(1).Episodes)
	})

	t.Run("dummy collector only reports the tree size", func(t *testing.T) {
		c := NewDummyCollector()
		c.Start(1, 10)
		c.AddEpisode()
		require.Equal(t, SearchMetric{TreeSize: 3}, c.Complete(3))
	})
}
