package main

import (
	"context"

	"github.com/rotisserie/eris"
	"golang.org/x/sync/errgroup"

	"github.com/ohl-research/exposure-cli/internal/dataset"
	"github.com/ohl-research/exposure-cli/internal/model"
)

// resolvePath picks the flag value over the configured default and
// errors when neither is set.
func resolvePath(flagVal, cfgVal, name string) (string, error) {
	if flagVal != "" {
		return flagVal, nil
	}
	if cfgVal != "" {
		return cfgVal, nil
	}
	return "", eris.Errorf("no %s path given (flag --%s or config data.%s)", name, name, name)
}

// loadMatchInputs loads the reference table and the ACS extract
// concurrently. The codebook, when given, is loaded first so major
// titles can be attached during the ACS pass.
func loadMatchInputs(ctx context.Context, refPath, acsPath, codebookPath string) ([]model.ReferenceEntry, *dataset.ACSResult, error) {
	var titles map[string]string
	if codebookPath != "" {
		cb, err := dataset.LoadCodebook(codebookPath)
		if err != nil {
			return nil, nil, err
		}
		titles = cb.Majors
	}

	var (
		ref []model.ReferenceEntry
		acs *dataset.ACSResult
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		ref, err = dataset.LoadReference(gctx, refPath)
		return err
	})
	g.Go(func() error {
		var err error
		acs, err = dataset.LoadACS(gctx, acsPath, dataset.ACSOptions{
			MinAge: cfg.Panel.MinAge,
			MaxAge: cfg.Panel.MaxAge,
			Titles: titles,
		})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return ref, acs, nil
}
