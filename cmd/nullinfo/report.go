package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"runtime"
	"slices"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/broady/nullinfo"
	"github.com/broady/nullinfo/internal/config"
	"github.com/broady/nullinfo/internal/sink"
	"github.com/broady/nullinfo/meta"
)

// Report is the resolution of one member.
type Report struct {
	Member     string         `json:"member"`
	Kind       string         `json:"kind"`
	Info       *nullinfo.Info `json:"info"`
	Parameters []ParamReport  `json:"parameters,omitempty"`
	Warnings   []string       `json:"warnings,omitempty"`
}

// ParamReport is the resolution of one method parameter.
type ParamReport struct {
	Name string         `json:"name"`
	Info *nullinfo.Info `json:"info"`
}

// selectMembers returns the catalog members named by keys, in key order, or
// every member in catalog order when keys is empty.
func selectMembers(catalog *meta.Catalog, keys []string) ([]meta.Member, error) {
	if len(keys) == 0 {
		return catalog.Members, nil
	}
	var missing []string
	out := make([]meta.Member, 0, len(keys))
	for _, k := range keys {
		m := catalog.FindMember(k)
		if m == nil {
			missing = append(missing, k)
			continue
		}
		out = append(out, m)
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("unknown member(s): %s", strings.Join(missing, ", "))
	}
	return out, nil
}

// resolveAll resolves members in parallel. Reports keep the order of
// members.
func resolveAll(ctx context.Context, r *nullinfo.Resolver, members []meta.Member) ([]Report, error) {
	reports := make([]Report, len(members))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, m := range members {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			reports[i] = resolveMember(r, m)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return reports, nil
}

func resolveMember(r *nullinfo.Resolver, m meta.Member) Report {
	rep := Report{
		Member: meta.Key(m),
		Kind:   m.MemberKind().String(),
		Info:   r.ForMember(m),
	}
	if method, ok := m.(*meta.Method); ok {
		for _, p := range method.Parameters {
			rep.Parameters = append(rep.Parameters, ParamReport{Name: p.Name, Info: r.ForParameter(p)})
		}
	}
	rep.Warnings = truncations(rep.Info, "")
	for _, p := range rep.Parameters {
		rep.Warnings = append(rep.Warnings, truncations(p.Info, "param "+p.Name+": ")...)
	}
	return rep
}

// truncations returns a warning for each truncated node of info.
func truncations(info *nullinfo.Info, prefix string) []string {
	var out []string
	info.Walk(func(_ int, n *nullinfo.Info) bool {
		if n.Truncated {
			out = append(out, prefix+"resolution truncated at "+meta.Format(n.Type))
			return false
		}
		return true
	})
	return out
}

// writeReports writes each report as JSON to its own file in s.
func writeReports(ctx context.Context, s sink.Sink, reports []Report) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for _, rep := range reports {
		g.Go(func() error {
			data, err := json.MarshalIndent(rep, "", "  ")
			if err != nil {
				return fmt.Errorf("%s: %w", rep.Member, err)
			}
			data = append(data, '\n')
			if err := s.WriteFile(gctx, sink.ReportPath(rep.Member), data); err != nil {
				return fmt.Errorf("%s: %w", rep.Member, err)
			}
			return nil
		})
	}
	return g.Wait()
}

// logWarnings logs the catalog's build warnings and its duplicate keys.
func logWarnings(logger *slog.Logger, catalog *meta.Catalog) {
	for _, w := range slices.Concat(catalog.Warnings, catalog.DuplicateWarnings()) {
		attrs := []any{"code", w.Code}
		if w.TypeName != "" {
			attrs = append(attrs, "type", w.TypeName)
		}
		if w.Source != nil {
			attrs = append(attrs, "source", fmt.Sprintf("%s:%d:%d", w.Source.File, w.Source.Line, w.Source.Column))
		}
		logger.Warn(w.Message, attrs...)
	}
}

type emitOptions struct {
	settings config.File
	resolver *nullinfo.Resolver
	out      string
}

// emit logs the catalog warnings and resolves the selected members. Reports
// are printed to stdout, or written below opts.out when set.
func emit(ctx context.Context, logger *slog.Logger, catalog *meta.Catalog, opts emitOptions) error {
	logWarnings(logger, catalog)

	members, err := selectMembers(catalog, opts.settings.Members)
	if err != nil {
		return err
	}
	reports, err := resolveAll(ctx, opts.resolver, members)
	if err != nil {
		return err
	}
	logger.Info("resolved members", "count", len(reports))

	if opts.out != "" {
		fs := sink.NewFilesystemSink(opts.out)
		if err := writeReports(ctx, fs, reports); err != nil {
			return err
		}
		logger.Info("wrote reports", "dir", opts.out)
		return nil
	}

	if opts.settings.Format == "json" {
		return renderJSON(stdout, reports)
	}
	return renderText(stdout, reports, colorEnabled(opts.settings.Color, stdout))
}
