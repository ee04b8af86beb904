package main

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fumin/sitepass"
)

func newBatchCmd(o *options) *cobra.Command {
	var workers int
	cmd := &cobra.Command{
		Use:   "batch sites-file",
		Short: "Derive the passwords of every site listed in a file",
		Long: `batch reads site names from a file, one per line, and prints each site with its password separated by a tab.
Blank lines and lines starting with # are skipped. The secret is read once from standard input.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch(cmd, o, args[0], workers)
		},
	}
	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "concurrent derivations (default GOMAXPROCS)")
	return cmd
}

func runBatch(cmd *cobra.Command, o *options, path string, workers int) error {
	sites, err := readSites(path)
	if err != nil {
		return err
	}
	secret, err := readSecret(cmd)
	if err != nil {
		return err
	}
	f, err := o.digestFunc()
	if err != nil {
		return err
	}
	policy, err := o.policy()
	if err != nil {
		return err
	}

	jobs := make([]sitepass.Job, 0, len(sites))
	for _, site := range sites {
		rule, err := o.ruleFor(site)
		if err != nil {
			return errors.Wrapf(err, "site %q", site)
		}
		d, err := f(site, secret)
		if err != nil {
			return errors.Wrapf(err, "site %q", site)
		}
		jobs = append(jobs, sitepass.Job{Site: site, Digest: d, Rule: rule})
	}

	b := &sitepass.Batch{Policy: policy, Workers: workers, Logger: o.logger}
	results, err := b.Run(cmd.Context(), jobs)
	if err != nil {
		return err
	}
	var failed int
	for _, r := range results {
		if r.Err != nil {
			failed++
			continue
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", r.Site, r.Password)
	}
	if failed > 0 {
		return errors.Errorf("%d of %d sites failed", failed, len(results))
	}
	o.logger.Debug("batch complete", zap.Int("sites", len(results)))
	return nil
}

func readSites(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	defer f.Close()

	var sites []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		sites = append(sites, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, path)
	}
	return sites, nil
}

func newRulesCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "rules",
		Short: "List the available rules",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rules := o.config.AllRules()
			names := make([]string, 0, len(rules))
			for name := range rules {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				fmt.Fprintln(cmd.OutOrStdout(), describe(rules[name]))
			}
			return nil
		},
	}
}

// describe formats a rule on one line, such as "digit12 length=12 upper:5 lower:5 digit:1 symbol:1 require=digit>=1/12".
func describe(r sitepass.Rule) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s length=%d", r.Name, r.Length)
	for _, cw := range r.Classes {
		fmt.Fprintf(&sb, " %s:%d", cw.Class, cw.Weight)
	}
	if req := r.Require; req != nil {
		fmt.Fprintf(&sb, " require=%s>=%d/%d", req.Class, req.Min, req.Within)
	}
	return sb.String()
}
