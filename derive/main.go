// Command derive prints the password of a site.
//
//	derive [flags] site [secret]
//
// The secret is read from standard input when it is not given as an argument.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/fumin/sitepass"
	"github.com/fumin/sitepass/digest"
)

type options struct {
	configPath string
	rule       string
	digest     string
	strict     bool
	showDigest bool
	verbose    bool

	config *sitepass.Config
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	o := &options{}
	root := &cobra.Command{
		Use:   "derive site [secret]",
		Short: "Derive the password of a site from a secret",
		Long: `derive hashes a site name together with a secret and decodes the digest into a password.
The same site, secret and rule always yield the same password, so nothing needs to be stored.

Sites are mapped to rules in an optional YAML config file, other sites use the default rule.`,
		Args:          cobra.RangeArgs(1, 2),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return o.setup(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if o.logger != nil {
				_ = o.logger.Sync()
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDerive(cmd, o, args)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&o.configPath, "config", "c", "", "YAML file with rules and site mappings")
	flags.StringVarP(&o.rule, "rule", "r", "", "rule name, overriding the config")
	flags.StringVarP(&o.digest, "digest", "d", "", "digest function: one of sha1, sha256, sha512, scrypt (default sha1)")
	flags.BoolVar(&o.strict, "strict", false, "fail instead of printing a shorter password when the digest runs out")
	flags.BoolVar(&o.showDigest, "show-digest", false, "also print the base64 prefix of the digest")
	flags.BoolVarP(&o.verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(newBatchCmd(o), newRulesCmd(o))
	return root
}

// setup builds the logger and loads the config.
func (o *options) setup(cmd *cobra.Command) error {
	level := zapcore.InfoLevel
	if o.verbose {
		level = zapcore.DebugLevel
	}
	encoder := zapcore.NewConsoleEncoder(zap.NewProductionEncoderConfig())
	o.logger = zap.New(zapcore.NewCore(encoder, zapcore.AddSync(cmd.ErrOrStderr()), level))

	if o.configPath == "" {
		return nil
	}
	c, err := sitepass.LoadConfig(o.configPath)
	if err != nil {
		return err
	}
	o.config = c
	o.logger.Debug("config loaded", zap.String("path", o.configPath), zap.Int("rules", len(c.Rules)), zap.Int("sites", len(c.Sites)))
	return nil
}

// ruleFor returns the rule of site, honoring --rule.
func (o *options) ruleFor(site string) (sitepass.Rule, error) {
	if o.rule != "" {
		return o.config.Rule(o.rule)
	}
	return o.config.RuleFor(site)
}

func (o *options) digestFunc() (digest.Func, error) {
	if o.digest != "" {
		return digest.Lookup(o.digest)
	}
	return o.config.DigestFunc()
}

func (o *options) policy() (sitepass.Policy, error) {
	if o.strict {
		return sitepass.Strict, nil
	}
	return o.config.ExhaustionPolicy()
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "derive: %v\n", err)
		os.Exit(1)
	}
}
