// internal/domain/story/generator_port.go
package story

import "context"

// TextGenerator is the hosted generative model port: prompt in, raw text out.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
