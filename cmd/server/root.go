package main

import (
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	port    int
)

var rootCmd = &cobra.Command{
	Use:   "go-gemini",
	Short: "Small web front-ends for a hosted language model",
	Long: `go-gemini serves one of two single-page web apps backed by Gemini (or a local Ollama model).

  chat   keeps a running question/answer transcript
  guide  answers questions about a reference document, caching each answer

Configuration is read from config.json (or --config) and GOGEMINI_* environment
variables. The Gemini API key comes from GOOGLE_API_KEY.

Examples:
  go-gemini chat
  go-gemini guide --document sample_user_guide.md --port 8080
  go-gemini chat --config /etc/go-gemini/config.json`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.json if present)")
	rootCmd.PersistentFlags().IntVarP(&port, "port", "p", 0, "listen port (overrides server.port)")
}
