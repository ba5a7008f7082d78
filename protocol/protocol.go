package protocol

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/a-bouts/pod-racer/pod"
	"github.com/a-bouts/pod-racer/race"
	"github.com/a-bouts/pod-racer/vector"
)

const telemetryFields = 6

// Reader decodes the referee input, one record per line
type Reader struct {
	scanner *bufio.Scanner
	line    int
}

func NewReader(r io.Reader) *Reader {
	return &Reader{scanner: bufio.NewScanner(r)}
}

func (r *Reader) next() ([]string, error) {
	if !r.scanner.Scan() {
		if err := r.scanner.Err(); err != nil {
			return nil, err
		}
		return nil, io.EOF
	}
	r.line++
	return strings.Fields(r.scanner.Text()), nil
}

func (r *Reader) ints(want int) ([]int, error) {
	fields, err := r.next()
	if err != nil {
		return nil, err
	}
	if len(fields) < want {
		return nil, fmt.Errorf("line %d: got %d fields, want %d", r.line, len(fields), want)
	}

	res := make([]int, want)
	for i := 0; i < want; i++ {
		res[i], err = strconv.Atoi(fields[i])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", r.line, err)
		}
	}
	return res, nil
}

// ReadCourse reads the race header : laps, checkpoint count and checkpoints
func (r *Reader) ReadCourse() (race.Course, error) {
	laps, err := r.ints(1)
	if err != nil {
		return race.Course{}, fmt.Errorf("reading laps: %w", err)
	}

	count, err := r.ints(1)
	if err != nil {
		return race.Course{}, fmt.Errorf("reading checkpoint count: %w", err)
	}
	if count[0] <= 0 {
		return race.Course{}, fmt.Errorf("line %d: invalid checkpoint count %d", r.line, count[0])
	}

	checkpoints := make([]vector.Vector, count[0])
	for i := range checkpoints {
		xy, err := r.ints(2)
		if err != nil {
			return race.Course{}, fmt.Errorf("reading checkpoint %d: %w", i, err)
		}
		checkpoints[i] = vector.New(float64(xy[0]), float64(xy[1]))
	}

	return race.NewCourse(laps[0], checkpoints), nil
}

// ReadTurn reads the four pod records of a turn. It returns io.EOF when the
// referee closed the input before the turn started.
func (r *Reader) ReadTurn() ([2 * race.PodsPerSide]pod.Telemetry, error) {
	var records [2 * race.PodsPerSide]pod.Telemetry

	for i := range records {
		f, err := r.ints(telemetryFields)
		if err == io.EOF && i == 0 {
			return records, io.EOF
		}
		if err != nil {
			return records, fmt.Errorf("reading pod %d: %w", i, err)
		}
		records[i] = pod.Telemetry{X: f[0], Y: f[1], VX: f[2], VY: f[3], Heading: f[4], Next: f[5]}
	}

	return records, nil
}

type Writer struct {
	w *bufio.Writer
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w)}
}

// WriteCommands prints one command per line and flushes, the referee waits for them
func (w *Writer) WriteCommands(commands ...string) error {
	for _, c := range commands {
		if _, err := w.w.WriteString(c + "\n"); err != nil {
			return err
		}
	}
	return w.w.Flush()
}
