package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zsiec/timecode/internal/api"
	"github.com/zsiec/timecode/internal/client"
	"github.com/zsiec/timecode/pkg/timecode"
	"github.com/zsiec/timecode/pkg/version"
)

// emit writes v as JSON when --json is set, otherwise calls human.
func (o *rootOptions) emit(cmd *cobra.Command, v interface{}, advisories []timecode.Advisory, human func(io.Writer)) error {
	if o.json {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	human(cmd.OutOrStdout())
	for _, a := range advisories {
		fmt.Fprintln(cmd.ErrOrStderr(), renderAdvisory(a))
	}
	return nil
}

func parseInput(s string) api.Input {
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return api.Input{Seconds: v, Numeric: true}
	}
	return api.Input{Text: s}
}

func parseSeconds(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid seconds %q", s)
	}
	return v, nil
}

// parseRange accepts START-END or START,END in seconds.
func parseRange(s string) (timecode.Range, error) {
	sep := ","
	if !strings.Contains(s, sep) {
		sep = "-"
	}
	a, b, ok := strings.Cut(s, sep)
	if !ok {
		return timecode.Range{}, fmt.Errorf("invalid range %q: expected START-END", s)
	}
	start, err := parseSeconds(a)
	if err != nil {
		return timecode.Range{}, fmt.Errorf("invalid range %q: %w", s, err)
	}
	end, err := parseSeconds(b)
	if err != nil {
		return timecode.Range{}, fmt.Errorf("invalid range %q: %w", s, err)
	}
	return timecode.Range{start, end}, nil
}

func addRateFlag(cmd *cobra.Command, rate *rateFlag, required bool) {
	cmd.Flags().VarP(rate, "rate", "r", "Frame rate, e.g. 25, 29.97 or 30000/1001")
	if required {
		_ = cmd.MarkFlagRequired("rate")
	}
}

func addDropFlag(cmd *cobra.Command, drop *dropFlag) {
	cmd.Flags().VarP(drop, "drop", "d", "Drop-frame labels: auto, on or off")
}

func newFromSecondsCmd(opts *rootOptions) *cobra.Command {
	var (
		rate rateFlag
		drop dropFlag
	)
	cmd := &cobra.Command{
		Use:     "from-seconds SECONDS",
		Short:   "Convert seconds to a timecode label",
		Example: "  tc from-seconds 3600 --rate 29.97\n  tc from-seconds 90.5 --rate 25",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			seconds, err := parseSeconds(args[0])
			if err != nil {
				return err
			}
			b, closeFn, err := opts.backend()
			if err != nil {
				return err
			}
			defer closeFn()

			resp, err := b.FromSeconds(cmd.Context(), api.FromSecondsRequest{
				Seconds:   seconds,
				FrameRate: api.FrameRate(rate.value),
				DropFrame: drop.pointer(),
			})
			if err != nil {
				return err
			}
			return opts.emit(cmd, resp, resp.Advisories, func(w io.Writer) {
				fmt.Fprintln(w, renderLabel(resp.Timecode, resp.Format))
			})
		},
	}
	addRateFlag(cmd, &rate, true)
	addDropFlag(cmd, &drop)
	return cmd
}

func newToSecondsCmd(opts *rootOptions) *cobra.Command {
	var rate rateFlag
	cmd := &cobra.Command{
		Use:   "to-seconds TIMECODE",
		Short: "Convert a timecode label to seconds",
		Long: `Convert a timecode label to seconds. Short forms such as "1:30" are
padded to a full label first. A plain number is taken as seconds already.`,
		Example: "  tc to-seconds '01:00:00;00' --rate 29.97\n  tc to-seconds 1:30 --rate 25",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, closeFn, err := opts.backend()
			if err != nil {
				return err
			}
			defer closeFn()

			resp, err := b.ToSeconds(cmd.Context(), api.ToSecondsRequest{
				Timecode:  parseInput(args[0]),
				FrameRate: api.FrameRate(rate.value),
			})
			if err != nil {
				return err
			}
			return opts.emit(cmd, resp, resp.Advisories, func(w io.Writer) {
				fmt.Fprintln(w, labelStyle.Render(strconv.FormatFloat(resp.Seconds, 'f', -1, 64)))
			})
		},
	}
	addRateFlag(cmd, &rate, false)
	return cmd
}

func newShortCmd(opts *rootOptions) *cobra.Command {
	var (
		rate rateFlag
		drop dropFlag
	)
	cmd := &cobra.Command{
		Use:     "short INPUT",
		Short:   "Render an hh:mm:ss label from a timecode or seconds",
		Example: "  tc short '00:01:00;02' --rate 29.97\n  tc short 30 --rate 29.97 --drop on",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, closeFn, err := opts.backend()
			if err != nil {
				return err
			}
			defer closeFn()

			resp, err := b.Short(cmd.Context(), api.ShortRequest{
				Input:     parseInput(args[0]),
				FrameRate: api.FrameRate(rate.value),
				DropFrame: drop.pointer(),
			})
			if err != nil {
				return err
			}
			return opts.emit(cmd, resp, resp.Advisories, func(w io.Writer) {
				fmt.Fprintln(w, labelStyle.Render(resp.Timecode))
			})
		},
	}
	addRateFlag(cmd, &rate, true)
	addDropFlag(cmd, &drop)
	return cmd
}

func newValidateCmd(opts *rootOptions) *cobra.Command {
	var rate rateFlag
	cmd := &cobra.Command{
		Use:   "validate TIMECODE",
		Short: "Check a timecode label",
		Long: `Check a timecode label against the hh:mm:ss:ff grammar and, when --rate
is given, against that frame rate. Exits non-zero when the label is invalid.`,
		Example: "  tc validate '00:01:00;00' --rate 29.97",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, closeFn, err := opts.backend()
			if err != nil {
				return err
			}
			defer closeFn()

			resp, err := b.Validate(cmd.Context(), api.ValidateRequest{
				Timecode:  args[0],
				FrameRate: api.FrameRate(rate.value),
			})
			if err != nil {
				return err
			}
			if err := opts.emit(cmd, resp, nil, func(w io.Writer) {
				fmt.Fprint(w, renderReport(resp.ValidationResult))
			}); err != nil {
				return err
			}
			if !resp.Valid {
				return errInvalidTimecode
			}
			return nil
		},
	}
	addRateFlag(cmd, &rate, false)
	return cmd
}

func newRangesCmd(opts *rootOptions) *cobra.Command {
	var (
		rate rateFlag
		drop dropFlag
	)
	cmd := &cobra.Command{
		Use:   "ranges START-END...",
		Short: "Convert [start, end] ranges in seconds to timecode labels",
		Long: `Convert ranges given in seconds to start and end labels. Each range is
START-END or START,END; reversed ranges are swapped.`,
		Example: "  tc ranges 0-30 120-180 --rate 29.97",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ranges := make([]timecode.Range, 0, len(args))
			for _, arg := range args {
				r, err := parseRange(arg)
				if err != nil {
					return err
				}
				ranges = append(ranges, r)
			}

			b, closeFn, err := opts.backend()
			if err != nil {
				return err
			}
			defer closeFn()

			resp, err := b.Ranges(cmd.Context(), api.RangesRequest{
				Ranges:    ranges,
				FrameRate: api.FrameRate(rate.value),
				DropFrame: drop.pointer(),
			})
			if err != nil {
				return err
			}
			return opts.emit(cmd, resp, resp.Advisories, func(w io.Writer) {
				for _, r := range resp.Ranges {
					fmt.Fprintf(w, "%s %s %s %s\n",
						labelStyle.Render(r.Start), mutedStyle.Render("->"), labelStyle.Render(r.End),
						mutedStyle.Render(strconv.FormatFloat(r.Duration, 'f', -1, 64)+"s"))
				}
			})
		},
	}
	addRateFlag(cmd, &rate, true)
	addDropFlag(cmd, &drop)
	return cmd
}

func newRatesCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "rates",
		Short: "List the well-known frame rates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			b, closeFn, err := opts.backend()
			if err != nil {
				return err
			}
			defer closeFn()

			resp, err := b.Rates(cmd.Context())
			if err != nil {
				return err
			}
			return opts.emit(cmd, resp, nil, func(w io.Writer) {
				fmt.Fprint(w, renderRates(resp.Rates))
			})
		},
	}
}

func newVersionCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the client version, and the service version with --server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := struct {
				Client version.Info  `json:"client"`
				Server *version.Info `json:"server,omitempty"`
			}{Client: version.GetInfo()}

			if opts.server != "" {
				b, closeFn, err := opts.backend()
				if err != nil {
					return err
				}
				defer closeFn()

				info, err := b.(*client.Client).Version(cmd.Context())
				if err != nil {
					return err
				}
				out.Server = info
			}

			return opts.emit(cmd, out, nil, func(w io.Writer) {
				fmt.Fprintln(w, "client: "+out.Client.String())
				if out.Server != nil {
					fmt.Fprintln(w, "server: "+out.Server.String())
				}
			})
		},
	}
}
