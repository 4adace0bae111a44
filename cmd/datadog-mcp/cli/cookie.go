package cli

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cobalt-robotics/datadog-mcp/internal/config"
)

var csrfTarget bool

var cookieCmd = &cobra.Command{
	Use:   "cookie",
	Short: "Manage the session cookie and CSRF token files",
}

var cookieSetCmd = &cobra.Command{
	Use:   "set [value]",
	Short: "Save a session cookie (or CSRF token with --csrf) to its file",
	Long: `Set writes the value to the well-known credential file with 0600
permissions. With no argument the value is read from stdin, which keeps
it out of shell history. The running server picks up the new value on the
next request; no restart needed.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		value := ""
		if len(args) == 1 {
			value = args[0]
		} else {
			reader := bufio.NewReader(cmd.InOrStdin())
			line, _ := reader.ReadString('\n')
			value = line
		}
		value = strings.TrimSpace(value)
		if value == "" {
			return fmt.Errorf("empty value")
		}

		path := cfg.CookieFile
		if csrfTarget {
			path = cfg.CSRFFile
		}
		if err := writeCredentialFile(path, value); err != nil {
			return err
		}

		fmt.Printf("saved to %s\n", path)
		return nil
	},
}

var cookieShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Report whether the cookie and CSRF token files are populated",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		printFileStatus("cookie", cfg.CookieFile)
		printFileStatus("CSRF token", cfg.CSRFFile)
		return nil
	},
}

var cookieClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete the cookie and CSRF token files",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		for _, path := range []string{cfg.CookieFile, cfg.CSRFFile} {
			if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
				return fmt.Errorf("removing %s: %w", path, err)
			}
		}
		fmt.Println("cleared")
		return nil
	},
}

// writeCredentialFile writes value to path with restrictive permissions,
// creating the parent directory as 0700.
func writeCredentialFile(path, value string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(value), 0600); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	// WriteFile does not change the mode of an existing file.
	if err := os.Chmod(path, 0600); err != nil {
		return fmt.Errorf("setting permissions on %s: %w", path, err)
	}
	return nil
}

func printFileStatus(name, path string) {
	info, err := os.Stat(path)
	switch {
	case err != nil:
		fmt.Printf("%s: not set (%s)\n", name, path)
	case info.Size() == 0:
		fmt.Printf("%s: empty (%s)\n", name, path)
	default:
		fmt.Printf("%s: set (%s, %d bytes, mode %04o)\n", name, path, info.Size(), info.Mode().Perm())
	}
}

func init() {
	cookieSetCmd.Flags().BoolVar(&csrfTarget, "csrf", false, "write the CSRF token file instead of the cookie file")
	cookieCmd.AddCommand(cookieSetCmd, cookieShowCmd, cookieClearCmd)
	rootCmd.AddCommand(cookieCmd)
}
