package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/giantswarm/procmux"
)

func newRunCmd() *cobra.Command {
	var (
		manifestPath string
		pollInterval time.Duration
		chunkSize    int
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the processes of a manifest and print their output",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) (err error) {
			if pollInterval <= 0 {
				return fmt.Errorf("--poll-interval must be greater than 0, got %s", pollInterval)
			}
			if chunkSize <= 0 {
				return fmt.Errorf("--read-chunk-size must be greater than 0, got %d", chunkSize)
			}

			m, err := LoadManifest(manifestPath)
			if err != nil {
				return err
			}

			opts := []procmux.SupervisorOption{procmux.WithReadChunkSize(chunkSize)}
			if m.Encoding != "" {
				opts = append(opts, procmux.WithDefaultEncoding(m.Encoding))
			}
			sup := procmux.NewSupervisor(opts...)
			defer func() {
				if serr := sup.Shutdown(); serr != nil && err == nil {
					err = fmt.Errorf("shutdown: %w", serr)
				}
			}()

			procs := make([]procmux.Process, 0, len(m.Processes))
			for _, spec := range m.Processes {
				p, err := sup.Spawn(spec.Command, spec.Args, spec.spawnOptions()...)
				if err != nil {
					return fmt.Errorf("start %s: %w", spec.Name, err)
				}
				procs = append(procs, p)
			}

			mux := newMuxer(sup, procs, m.Processes, cmd.OutOrStdout(), pollInterval)
			if err := mux.run(cmd.Context()); err != nil {
				return err
			}
			statuses, err := mux.wait(cmd.Context())
			if err != nil {
				return err
			}

			failed := 0
			for i, status := range statuses {
				fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s\n", m.Processes[i].Name, status)
				if status != 0 {
					failed++
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d processes failed", failed, len(statuses))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&manifestPath, "file", "f", "procmux.yaml", "Path to the process manifest")
	cmd.Flags().DurationVar(&pollInterval, "poll-interval", 250*time.Millisecond, "Longest wait between cancellation checks")
	cmd.Flags().IntVar(&chunkSize, "read-chunk-size", procmux.DefaultReadChunkSize, "Bytes requested per pipe read")

	return cmd
}
