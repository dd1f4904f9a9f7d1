package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
)

// PromptForImage prompts the user interactively for an image path when one
// was not provided on the command line. Returns an empty string if the user
// enters nothing.
func PromptForImage() string {
	fmt.Print("Image file: ")

	reader := bufio.NewReader(os.Stdin)
	input, err := reader.ReadString('\n')
	if err != nil {
		log.Warn().Err(err).Msg("Failed to read input")
		return ""
	}

	return strings.TrimSpace(input)
}
