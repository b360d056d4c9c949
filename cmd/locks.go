package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ohler55/ojg/oj"
	"github.com/spf13/cobra"

	"github.com/agentic-research/deckguard/internal/proclock"
)

var locksCmd = &cobra.Command{
	Use:   "locks",
	Short: "Inspect and recover document lock markers",
}

// lockReport is one row of `locks list` output.
type lockReport struct {
	Document   string `json:"document"`
	MarkerPath string `json:"marker_path"`
	HolderPID  int    `json:"holder_pid,omitempty"`
	HolderHost string `json:"holder_host,omitempty"`
	Age        string `json:"age"`
	Stale      bool   `json:"stale"`
	StaleWhy   string `json:"stale_why,omitempty"`
}

var locksListCmd = &cobra.Command{
	Use:   "list [dir]",
	Short: "List lock markers under a directory (default: current)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := "."
		if len(args) == 1 {
			dir = args[0]
		}
		p, err := loadPolicy()
		if err != nil {
			return err
		}
		reports, err := scanLocks(dir, proclock.New(p.LockRetryInterval, p.LockStaleAfter))
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), oj.JSON(reports, 2))
		return nil
	},
}

var locksCleanCmd = &cobra.Command{
	Use:   "clean [dir]",
	Short: "Remove stale lock markers under a directory",
	Long: `Removes markers whose holder is dead or whose age exceeds the policy
staleness threshold. Live locks are never touched; this is the only way
deckguard reclaims a lock it did not take.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := "."
		if len(args) == 1 {
			dir = args[0]
		}
		p, err := loadPolicy()
		if err != nil {
			return err
		}
		locker := proclock.New(p.LockRetryInterval, p.LockStaleAfter)

		reports, err := scanLocks(dir, locker)
		if err != nil {
			return err
		}
		removed := make([]string, 0, len(reports))
		for _, r := range reports {
			if !r.Stale {
				continue
			}
			if err := locker.ForceReclaim(r.Document); err != nil {
				return err
			}
			removed = append(removed, r.MarkerPath)
		}
		fmt.Fprintln(cmd.OutOrStdout(), oj.JSON(map[string]any{"removed": removed}, 2))
		return nil
	},
}

// scanLocks finds ".<name>.lock" markers in dir and stats each one.
func scanLocks(dir string, locker *proclock.Locker) ([]lockReport, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	reports := []lockReport{}
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, ".") || !strings.HasSuffix(name, ".lock") {
			continue
		}
		doc := filepath.Join(dir, strings.TrimSuffix(strings.TrimPrefix(name, "."), ".lock"))
		st, err := locker.Stat(doc)
		if err != nil || !st.Held {
			continue
		}
		r := lockReport{
			Document:   doc,
			MarkerPath: st.MarkerPath,
			Age:        st.Age.Round(time.Second).String(),
			Stale:      st.Stale,
			StaleWhy:   st.StaleWhy,
		}
		if st.Marker != nil {
			r.HolderPID = st.Marker.PID
			r.HolderHost = st.Marker.Host
		}
		reports = append(reports, r)
	}
	return reports, nil
}

func init() {
	locksCmd.AddCommand(locksListCmd, locksCleanCmd)
	rootCmd.AddCommand(locksCmd)
}
