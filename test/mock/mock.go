package mock

import (
	"fmt"
	"strings"
	"sync"

	"percviz/core/view"
)

// MockLog prints like a logger and keeps every line for assertions.
type MockLog struct {
	Name  string
	mutex sync.Mutex
	lines []string
}

func (l *MockLog) record(level, msg string) {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	l.lines = append(l.lines, level+" "+msg)
	fmt.Println(l.Name, level, msg)
}

func (l *MockLog) Debug(args ...interface{}) {
	l.record("DEBUG", fmt.Sprint(args...))
}
func (l *MockLog) Debugf(format string, args ...interface{}) {
	l.record("DEBUG", fmt.Sprintf(format, args...))
}

func (l *MockLog) Info(args ...interface{}) {
	l.record("INFO", fmt.Sprint(args...))
}

func (l *MockLog) Infof(format string, args ...interface{}) {
	l.record("INFO", fmt.Sprintf(format, args...))
}

func (l *MockLog) Warn(args ...interface{}) {
	l.record("WARN", fmt.Sprint(args...))
}

func (l *MockLog) Warnf(format string, args ...interface{}) {
	l.record("WARN", fmt.Sprintf(format, args...))
}

func (l *MockLog) Error(args ...interface{}) {
	l.record("ERROR", fmt.Sprint(args...))
}

func (l *MockLog) Errorf(format string, args ...interface{}) {
	l.record("ERROR", fmt.Sprintf(format, args...))
}

func (l *MockLog) Lines() []string {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	out := make([]string, len(l.lines))
	copy(out, l.lines)
	return out
}

// Count returns how many recorded lines start with level.
func (l *MockLog) Count(level string) int {
	n := 0
	for _, line := range l.Lines() {
		if strings.HasPrefix(line, level+" ") {
			n++
		}
	}
	return n
}

func GetMockLogger(name string) *MockLog {
	return &MockLog{Name: name}
}

// MockRenderer captures every frame it is asked to draw.
type MockRenderer struct {
	Frames []view.Frame
	Err    error
	Closed bool
}

func (r *MockRenderer) Render(f view.Frame) error {
	if r.Err != nil {
		return r.Err
	}
	r.Frames = append(r.Frames, f)
	return nil
}

func (r *MockRenderer) Close() error {
	r.Closed = true
	return nil
}

func (r *MockRenderer) Last() view.Frame {
	return r.Frames[len(r.Frames)-1]
}
