package metrics

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

type GameRecord struct {
	ID   int
	Game string // Environment name
	GameMetric
}

type MoveRecord struct {
	Game int // GameRecord.ID
	MoveMetric
}

type Writer struct {
	baseDir string
}

// NewWriter creates a subfolder of root named by experiment and current timestamp.
func NewWriter(root, name string) (*Writer, error) {
	timestamp := time.Now().UTC().Format("20060102T150405Z")
	baseDir := filepath.Join(root, name, timestamp)
	err := os.MkdirAll(baseDir, 0755)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create directory")
	}

	return &Writer{
		baseDir: baseDir,
	}, nil
}

func (w *Writer) Dir() string {
	return w.baseDir
}

func (w *Writer) create(name string) (*os.File, error) {
	f, err := os.Create(filepath.Join(w.baseDir, name))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to create %s", name)
	}
	return f, nil
}

// WriteConfig stores a YAML snapshot of the experiment configuration.
func (w *Writer) WriteConfig(config any) error {
	f, err := w.create("config.yaml")
	if err != nil {
		return err
	}
	defer f.Close()

	encoder := yaml.NewEncoder(f)
	defer encoder.Close()
	return errors.Wrap(encoder.Encode(config), "failed to encode config")
}

func (w *Writer) WriteGameRecords(records []GameRecord) error {
	f, err := w.create("game_records.csv")
	if err != nil {
		return err
	}
	defer f.Close()

	header := []string{"id", "game", "winner", "turns", "start_time", "end_time", "duration"}
	rows := make([][]string, 0, len(records))
	for _, record := range records {
		rows = append(rows, []string{
			strconv.Itoa(record.ID),
			record.Game,
			strconv.Itoa(record.Winner),
			strconv.Itoa(record.Turns),
			record.StartTime.Format(time.RFC3339),
			record.EndTime.Format(time.RFC3339),
			record.Duration.String(),
		})
	}
	return writeCSV(f, "game records", header, rows)
}

func (w *Writer) WriteMoveRecords(records []MoveRecord) error {
	f, err := w.create("move_records.csv")
	if err != nil {
		return err
	}
	defer f.Close()

	header := []string{"game", "turn", "player", "variant", "strategy", "duration", "episodes", "full_playouts",
		"nodes", "ground", "abstract", "compression", "choices", "classes"}
	rows := make([][]string, 0, len(records))
	for _, record := range records {
		rows = append(rows, []string{
			strconv.Itoa(record.Game),
			strconv.Itoa(record.Turn),
			strconv.Itoa(record.Player),
			record.Variant,
			record.Strategy,
			record.Duration.String(),
			strconv.Itoa(record.Episodes),
			strconv.Itoa(record.FullPlayouts),
			strconv.Itoa(record.Nodes),
			strconv.Itoa(record.Ground),
			strconv.Itoa(record.Abstract),
			strconv.FormatFloat(record.Compression(), 'f', 3, 64),
			strconv.Itoa(record.Choices),
			strconv.Itoa(record.Classes),
		})
	}
	return writeCSV(f, "move records", header, rows)
}

// writeCSV writes the header then every row, and reports a failed final flush.
func writeCSV(out io.Writer, what string, header []string, rows [][]string) error {
	writer := csv.NewWriter(out)

	err := writer.Write(header)
	if err != nil {
		return errors.Wrapf(err, "failed to write %s header", what)
	}
	for _, row := range rows {
		err = writer.Write(row)
		if err != nil {
			return errors.Wrapf(err, "failed to write %s row", what)
		}
	}

	writer.Flush()
	return errors.Wrapf(writer.Error(), "failed to flush %s", what)
}

// WriteReport renders the HTML charts of the move records.
func (w *Writer) WriteReport(records []MoveRecord, alphaAbs int) error {
	f, err := w.create("results.html")
	if err != nil {
		return err
	}
	defer f.Close()

	return Report(f, records, alphaAbs)
}

// WriteFile stores raw content such as a DOT rendering.
func (w *Writer) WriteFile(name, content string) error {
	err := os.WriteFile(filepath.Join(w.baseDir, name), []byte(content), 0644)
	return errors.Wrapf(err, "failed to write %s", name)
}
