package generation

import (
	"context"
	"fmt"
	"hash/fnv"
	"strings"
)

// StaticGenerator produces deterministic placeholder insights without an
// external model. Used in development and tests where real generation
// would be slow, costly, or flaky.
type StaticGenerator struct{}

// NewStaticGenerator creates a generator that never leaves the process
func NewStaticGenerator() *StaticGenerator {
	return &StaticGenerator{}
}

var staticThemes = []string{
	"a period of steady growth and consolidation",
	"an invitation to re-examine long-held commitments",
	"favorable conditions for starting something new",
	"a time when patience yields more than pressure",
	"heightened clarity around relationships and shared goals",
}

// GenerateInsight returns canned text derived from the prompt so repeated
// calls with the same prompt produce identical output.
func (g *StaticGenerator) GenerateInsight(_ context.Context, prompt string) (string, error) {
	h := fnv.New32a()
	h.Write([]byte(prompt))
	theme := staticThemes[h.Sum32()%uint32(len(staticThemes))]

	subject := "This configuration"
	if idx := strings.IndexByte(prompt, '\n'); idx > 0 {
		first := strings.TrimSpace(prompt[:idx])
		if first != "" {
			subject = first
		}
	}

	return fmt.Sprintf("%s points to %s. Work with the current rather than against it, and revisit your intentions as the pattern completes.", subject, theme), nil
}
