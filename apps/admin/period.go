package main

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"github.com/trezcool/boletin/core/period"
)

func (cli *commandLine) resolvePeriod(date string, year int) error {
	d, err := period.ParseDate(date)
	if err != nil {
		return err
	}
	p, err := cli.contentSvc.ResolvePeriod(context.Background(), d, year)
	if err != nil {
		return errors.Wrap(err, "resolving period")
	}

	_, _ = fmt.Fprintf(cli.out, "bimester: %d\nquarter: %d\nintensification: %t\n", p.Bimester, p.Quarter, p.IsIntensification)
	if t, ok := period.TrimesterOf(d); ok {
		_, _ = fmt.Fprintf(cli.out, "trimester: %s\n", t)
	}
	return nil
}
