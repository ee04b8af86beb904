package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/fumin/sitepass"
	"github.com/fumin/sitepass/digest"
)

func runDerive(cmd *cobra.Command, o *options, args []string) error {
	site := args[0]
	var secret string
	if len(args) > 1 {
		secret = args[1]
	} else {
		var err error
		if secret, err = readSecret(cmd); err != nil {
			return err
		}
	}

	rule, err := o.ruleFor(site)
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

	d, err := f(site, secret)
	if err != nil {
		return err
	}
	if o.showDigest {
		fmt.Fprintf(cmd.OutOrStdout(), "digest %s\n", digest.Short(d))
	}
	pw, err := sitepass.Derive(d, rule, policy)
	if err != nil {
		return err
	}
	if len(pw) < rule.Length {
		o.logger.Warn("digest too short for rule, password truncated", zap.String("rule", rule.Name), zap.Int("length", len(pw)), zap.Int("want", rule.Length))
	}
	fmt.Fprintln(cmd.OutOrStdout(), pw)
	return nil
}

// readSecret reads the secret from standard input.
// On a terminal the secret is not echoed, otherwise the first line is used.
func readSecret(cmd *cobra.Command) (string, error) {
	in := cmd.InOrStdin()
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(cmd.ErrOrStderr(), "Secret: ")
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(cmd.ErrOrStderr())
		if err != nil {
			return "", errors.Wrap(err, "")
		}
		return string(b), nil
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !(err == io.EOF && line != "") {
		return "", errors.Wrap(err, "reading secret")
	}
	return strings.TrimRight(line, "\r\n"), nil
}
