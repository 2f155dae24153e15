package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/zsiec/timecode/internal/api"
	"github.com/zsiec/timecode/internal/client"
	"github.com/zsiec/timecode/pkg/timecode"
)

// errInvalidTimecode makes `tc validate` exit non-zero after the report
// has been printed.
var errInvalidTimecode = stderrors.New("timecode is invalid")

// backend performs conversions either in-process or through the service.
type backend interface {
	FromSeconds(ctx context.Context, req api.FromSecondsRequest) (*api.FromSecondsResponse, error)
	ToSeconds(ctx context.Context, req api.ToSecondsRequest) (*api.ToSecondsResponse, error)
	Short(ctx context.Context, req api.ShortRequest) (*api.ShortResponse, error)
	Validate(ctx context.Context, req api.ValidateRequest) (*api.ValidateResponse, error)
	Ranges(ctx context.Context, req api.RangesRequest) (*api.RangesResponse, error)
	Rates(ctx context.Context) (*api.RatesResponse, error)
}

type rootOptions struct {
	server   string
	http3    bool
	insecure bool
	timeout  time.Duration
	json     bool
}

func (o *rootOptions) backend() (backend, func(), error) {
	if o.server == "" {
		if o.http3 || o.insecure {
			return nil, nil, fmt.Errorf("--http3 and --insecure require --server")
		}
		return localBackend{}, func() {}, nil
	}

	opts := []client.Option{client.WithTimeout(o.timeout)}
	if o.http3 {
		opts = append(opts, client.WithHTTP3())
	}
	if o.insecure {
		opts = append(opts, client.WithInsecure())
	}
	c := client.New(o.server, opts...)
	return c, func() { _ = c.Close() }, nil
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "tc",
		Short: "Convert between seconds and SMPTE timecode",
		Long: `tc converts durations to SMPTE timecode labels and back, including
NTSC drop-frame timecode at 29.97 and 59.94 fps.

Conversions run locally unless --server points at a timecode service.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.server, "server", "", "Base URL of a timecode service, e.g. http://localhost:8080")
	flags.BoolVar(&opts.http3, "http3", false, "Talk to the service over HTTP/3 (https URLs only)")
	flags.BoolVar(&opts.insecure, "insecure", false, "Skip TLS certificate verification")
	flags.DurationVar(&opts.timeout, "timeout", 10*time.Second, "Request timeout in remote mode")
	flags.BoolVar(&opts.json, "json", false, "Print the full result as JSON")

	root.AddCommand(
		newFromSecondsCmd(opts),
		newToSecondsCmd(opts),
		newShortCmd(opts),
		newValidateCmd(opts),
		newRangesCmd(opts),
		newRatesCmd(opts),
		newVersionCmd(opts),
	)
	return root
}

// rateFlag is a frame rate flag accepting anything ParseFrameRate does.
type rateFlag struct {
	value float64
	text  string
}

func (f *rateFlag) String() string { return f.text }

func (f *rateFlag) Set(s string) error {
	v, err := timecode.ParseFrameRate(s)
	if err != nil {
		return err
	}
	f.value, f.text = v, s
	return nil
}

func (f *rateFlag) Type() string { return "rate" }

// dropFlag is the auto|on|off drop-frame flag.
type dropFlag struct {
	mode timecode.DropFrameMode
}

func (f *dropFlag) String() string { return f.mode.String() }

func (f *dropFlag) Set(s string) error {
	m, err := timecode.ParseDropFrameMode(s)
	if err != nil {
		return err
	}
	f.mode = m
	return nil
}

func (f *dropFlag) Type() string { return "auto|on|off" }

// pointer converts the mode to the optional flag used on the wire.
func (f *dropFlag) pointer() *bool {
	switch f.mode {
	case timecode.DropFrameOn:
		v := true
		return &v
	case timecode.DropFrameOff:
		v := false
		return &v
	default:
		return nil
	}
}
