package main

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"text/tabwriter"

	"github.com/pkg/errors"

	"github.com/trezcool/masomo-finance/core"
	"github.com/trezcool/masomo-finance/core/finance"
)

var errNoRecipients = errors.New("no report recipients: use -to or set FINANCE_REPORTRECIPIENTS")

func recipients(to string, fallback []string) ([]mail.Address, error) {
	list := make([]string, 0)
	for _, addr := range strings.Split(to, ",") {
		if addr = core.CleanString(addr); addr != "" {
			list = append(list, addr)
		}
	}
	if len(list) == 0 {
		list = fallback
	}
	if len(list) == 0 {
		return nil, errNoRecipients
	}

	addrs := make([]mail.Address, 0, len(list))
	for _, raw := range list {
		addr, err := mail.ParseAddress(raw)
		if err != nil {
			return nil, errors.Wrapf(err, "parsing recipient %q", raw)
		}
		addrs = append(addrs, *addr)
	}
	return addrs, nil
}

func (cli *commandLine) report(sel finance.Selector, to string) error {
	addrs, err := recipients(to, cli.conf.Finance.ReportRecipients)
	if err != nil {
		return err
	}

	if err = cli.board.Refresh(context.Background()); err != nil {
		return errors.Wrap(err, "loading finance data")
	}
	msg, err := finance.NewReportMessage(cli.conf.AppName, cli.board, sel, addrs)
	if err != nil {
		return err
	}

	cli.mailSvc.SendMessages(msg)
	cli.mailSvc.Wait()
	_, _ = fmt.Fprintf(cli.stdout(), "finance report sent to %d recipient(s)\n", len(addrs))
	return nil
}

func (cli *commandLine) plans() error {
	w := tabwriter.NewWriter(cli.stdout(), 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "CODE\tLABEL\tPRICE")
	for _, p := range cli.board.Catalog().Plans() {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", p.Code, p.Label, p.Price.String())
	}
	return w.Flush()
}
