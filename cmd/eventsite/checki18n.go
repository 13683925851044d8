package main

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"eventsite/internal/i18ncheck"
)

// Exit codes of check-i18n.
const (
	exitMismatch  = 1
	exitLoadError = 2
)

type localePair struct {
	reference string
	target    string
}

func newCheckI18nCmd() *cobra.Command {
	var (
		dir       string
		reference string
		refFile   string
		tgtFile   string
	)
	cmd := &cobra.Command{
		Use:   "check-i18n",
		Short: "check that every locale catalog has the same shape as the reference",
		Long: `Compares key sets, value types and array lengths of each locale catalog
against the reference catalog. Exits 0 when all match, 1 on a mismatch and
2 when a catalog cannot be loaded.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			stdout, stderr := cmd.OutOrStdout(), cmd.ErrOrStderr()
			if (refFile == "") != (tgtFile == "") {
				return errors.New("--reference-file and --target-file must be given together")
			}

			var pairs []localePair
			if refFile != "" {
				pairs = []localePair{{reference: refFile, target: tgtFile}}
			} else {
				ref, targets, err := i18ncheck.Discover(dir, reference)
				if err != nil {
					color.New(color.FgRed).Fprintln(stderr, err)
					return exitError{code: exitLoadError}
				}
				if len(targets) == 0 {
					color.New(color.FgRed).Fprintf(stderr, "no locale catalogs besides %s found in %s\n", filepath.Base(ref.Path), dir)
					return exitError{code: exitLoadError}
				}
				for _, t := range targets {
					pairs = append(pairs, localePair{reference: ref.Path, target: t.Path})
				}
			}
			return checkPairs(stdout, stderr, pairs)
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "locales", "directory holding <locale>.json catalogs")
	cmd.Flags().StringVar(&reference, "reference", "en", "reference locale tag")
	cmd.Flags().StringVar(&refFile, "reference-file", "", "explicit reference catalog (requires --target-file)")
	cmd.Flags().StringVar(&tgtFile, "target-file", "", "explicit target catalog (requires --reference-file)")
	return cmd
}

// checkPairs loads every catalog first, so a load failure wins over any
// mismatch.
func checkPairs(stdout, stderr io.Writer, pairs []localePair) error {
	cache := map[string]any{}
	load := func(path string) (any, error) {
		if v, ok := cache[path]; ok {
			return v, nil
		}
		v, err := i18ncheck.Load(path)
		if err != nil {
			return nil, err
		}
		cache[path] = v
		return v, nil
	}
	for _, p := range pairs {
		for _, path := range []string{p.reference, p.target} {
			if _, err := load(path); err != nil {
				color.New(color.FgRed).Fprintln(stderr, err)
				return exitError{code: exitLoadError}
			}
		}
	}

	red := color.New(color.FgRed)
	failed := false
	for _, p := range pairs {
		refName, tgtName := filepath.Base(p.reference), filepath.Base(p.target)
		mismatches := i18ncheck.Compare(cache[p.reference], cache[p.target])
		if len(mismatches) == 0 {
			color.New(color.FgGreen).Fprintf(stdout, "i18n structure check passed: %s and %s shapes match.\n", refName, tgtName)
			continue
		}
		failed = true
		red.Fprintf(stderr, "\ni18n structure mismatch detected (%s vs %s):\n\n", refName, tgtName)
		for _, m := range mismatches {
			fmt.Fprintln(stderr, " -", m)
		}
	}
	if failed {
		color.New(color.FgYellow).Fprintln(stderr, "\nFix the keys/structure so all locales have the same shape (keys and array lengths/types).")
		return exitError{code: exitMismatch}
	}
	return nil
}
