package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/abhisek/sokrates/internal/llm"
	"github.com/abhisek/sokrates/internal/voice"
)

var transcribeCmd = &cobra.Command{
	Use:   "transcribe <audio.wav>",
	Short: "Transcribe a recorded question to text",
	Long:  "Sends a WAV recording to the Whisper endpoint of the configured backend and prints the recognized text.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		wav, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read audio file: %w", err)
		}

		t, err := voice.NewTranscriber(llm.ConfigFromEnv().OpenAI)
		if err != nil {
			return err
		}

		text, err := t.Transcribe(cmd.Context(), wav)
		if err != nil {
			return err
		}

		fmt.Println(text)
		return nil
	},
}
