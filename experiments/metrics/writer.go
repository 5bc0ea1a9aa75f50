package metrics

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

type Writer struct {
	baseDir string
}

// NewWriter creates a subfolder of root named by the current timestamp.
func NewWriter(root string) (*Writer, error) {
	timestamp := time.Now().UTC().Format("20060102T150405Z")
	baseDir := filepath.Join(root, timestamp)
	err := os.MkdirAll(baseDir, 0755)
	if err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	return &Writer{
		baseDir: baseDir,
	}, nil
}

// Dir returns the folder the writer writes to.
func (w *Writer) Dir() string {
	return w.baseDir
}

func (w *Writer) writeCSV(name string, header []string, rows [][]string) error {
	path := filepath.Join(w.baseDir, name+".csv")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s file: %w", name, err)
	}
	defer f.Close()

	writer := csv.NewWriter(f)
	err = writer.Write(header)
	if err != nil {
		return fmt.Errorf("failed to write %s header: %w", name, err)
	}
	err = writer.WriteAll(rows)
	if err != nil {
		return fmt.Errorf("failed to write %s rows: %w", name, err)
	}
	return f.Close()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', 6, 64)
}

func (w *Writer) WriteAgentConfigs(configs []AgentConfig) error {
	rows := make([][]string, 0, len(configs))
	for _, config := range configs {
		rows = append(rows, []string{
			strconv.Itoa(config.ID),
			strconv.Itoa(config.Playouts),
			formatFloat(config.CPuct),
			strconv.Itoa(config.RolloutLimit),
		})
	}
	return w.writeCSV("agent_configs", []string{"id", "playouts", "c_puct", "rollout_limit"}, rows)
}

func (w *Writer) WriteGameRecords(records []GameRecord) error {
	rows := make([][]string, 0, len(records))
	for _, record := range records {
		rows = append(rows, []string{
			strconv.Itoa(record.ID),
			strconv.Itoa(record.Agent1),
			strconv.Itoa(record.Agent2),
			strconv.Itoa(record.StartingPlayer),
			strconv.Itoa(record.Winner),
			strconv.Itoa(record.TotalMoves),
			record.StartTime.Format(time.RFC3339),
			record.EndTime.Format(time.RFC3339),
			record.Duration.String(),
		})
	}
	header := []string{"id", "agent1", "agent2", "starting_player", "winner", "total_moves", "start_time", "end_time", "duration"}
	return w.writeCSV("game_records", header, rows)
}

func (w *Writer) WriteMoveRecords(records []MoveRecord) error {
	rows := make([][]string, 0, len(records))
	for _, record := range records {
		rows = append(rows, []string{
			strconv.Itoa(record.Game),
			strconv.Itoa(record.Step),
			strconv.Itoa(record.Player),
			strconv.Itoa(record.Move),
			record.Duration.String(),
			strconv.Itoa(record.Playouts),
			strconv.Itoa(record.FullRollouts),
			strconv.FormatBool(record.IsTreeReused),
		})
	}
	header := []string{"game", "step", "player", "move", "duration", "playouts", "full_rollouts", "is_tree_reused"}
	return w.writeCSV("move_records", header, rows)
}

func (w *Writer) WriteUpdateRecords(records []UpdateRecord) error {
	rows := make([][]string, 0, len(records))
	for _, record := range records {
		rows = append(rows, []string{
			strconv.Itoa(record.Batch),
			formatFloat(record.KL),
			formatFloat(record.LRMultiplier),
			formatFloat(record.Loss),
			formatFloat(record.Entropy),
			formatFloat(record.ExplainedVarOld),
			formatFloat(record.ExplainedVarNew),
			strconv.Itoa(record.Epochs),
		})
	}
	header := []string{"batch", "kl", "lr_multiplier", "loss", "entropy", "explained_var_old", "explained_var_new", "epochs"}
	return w.writeCSV("update_records", header, rows)
}

func (w *Writer) WriteArenaRecords(records []ArenaRecord) error {
	rows := make([][]string, 0, len(records))
	for _, record := range records {
		rows = append(rows, []string{
			strconv.Itoa(record.Batch),
			strconv.Itoa(record.PurePlayouts),
			strconv.Itoa(record.Wins),
			strconv.Itoa(record.Losses),
			strconv.Itoa(record.Ties),
			formatFloat(record.WinRatio),
		})
	}
	header := []string{"batch", "pure_playouts", "wins", "losses", "ties", "win_ratio"}
	return w.writeCSV("arena_records", header, rows)
}
