package scan

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// Reporter emits matched repository paths to the result sink.
type Reporter interface {
	PrintPath(repositoryPath string)
}

type lineReporter struct {
	writer io.Writer
	mutex  sync.Mutex
}

// NewLineReporter constructs a Reporter writing one path per line. Writes are
// serialized so concurrent workers never interleave within a line.
func NewLineReporter(writer io.Writer) Reporter {
	if writer == nil || writer == io.Discard {
		writer = os.Stdout
	}
	return &lineReporter{writer: writer}
}

func (reporter *lineReporter) PrintPath(repositoryPath string) {
	reporter.mutex.Lock()
	defer reporter.mutex.Unlock()

	fmt.Fprintln(reporter.writer, repositoryPath)
}
