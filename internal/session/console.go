package session

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"jsondropper/internal/util"
)

// Console reads answers line by line. Paths dragged into a Windows console
// arrive wrapped in quotes; ReadPath strips them.
type Console struct {
	in  *bufio.Reader
	out io.Writer

	// Interactive is false when input is piped; prompts then fall back to
	// defaults instead of waiting.
	Interactive bool
}

// NewConsole wraps in and out.
func NewConsole(in io.Reader, out io.Writer, interactive bool) *Console {
	return &Console{in: bufio.NewReader(in), out: out, Interactive: interactive}
}

// ReadLine prints prompt and returns the trimmed answer. It returns io.EOF
// once input is exhausted.
func (c *Console) ReadLine(prompt string) (string, error) {
	fmt.Fprint(c.out, prompt)
	line, err := c.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		fmt.Fprintln(c.out)
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// ReadPath is ReadLine for filesystem paths.
func (c *Console) ReadPath(prompt string) (string, error) {
	line, err := c.ReadLine(prompt)
	if err != nil {
		return "", err
	}
	return util.CleanInputPath(line), nil
}

// Choose lists options numbered from 1 and returns the picked index.
func (c *Console) Choose(title string, options []string) (int, error) {
	fmt.Fprintln(c.out, title)
	for i, o := range options {
		fmt.Fprintf(c.out, "  %d) %s\n", i+1, o)
	}
	for {
		answer, err := c.ReadLine(fmt.Sprintf("Choose 1-%d: ", len(options)))
		if err != nil {
			return -1, err
		}
		n, convErr := strconv.Atoi(answer)
		if convErr == nil && n >= 1 && n <= len(options) {
			return n - 1, nil
		}
		fmt.Fprintf(c.out, "'%s' is not a valid choice.\n", answer)
	}
}

// Pause waits for Enter so a console window opened by Explorer stays
// readable.
func (c *Console) Pause() {
	if !c.Interactive {
		return
	}
	_, _ = c.ReadLine("Press Enter to exit...")
}
