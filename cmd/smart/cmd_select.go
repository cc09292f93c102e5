// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.


package main

import (
	"errors"
	"fmt"

	"github.com/AleutianAI/smart/cmd/smart/internal/registry"
	"github.com/AleutianAI/smart/pkg/ux"
	"github.com/spf13/cobra"
)

var errNoSelectNames = errors.New("give algorithm names (POSIX regular expressions) to add or remove")

type selectOptions struct {
	add          bool
	remove       bool
	none         bool
	showAll      bool
	showSelected bool
	showNamed    string
	listNamed    bool
	saveAs       string
	setDefault   string
}

func newSelectCmd(a *app) *cobra.Command {
	o := &selectOptions{}
	selectCmd := &cobra.Command{
		Use:   "select [algo regex...]",
		Short: "Manage the selected and saved algorithm lists",
		Long: `Manage the selected algorithm list used by "smart run" and "smart test",
and named lists saved as N.algos in the config directory.

Algorithm names are POSIX extended regular expressions matched against
the whole name, case-insensitively. Without an option the selected list
is shown.`,
		Example: `  smart select --add hor bsdm.*
  smart select --remove bm
  smart select --save-as fast
  smart select -set fast`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return WrapExitError(a.runSelect(cmd, args, o), "select")
		},
	}

	f := selectCmd.Flags()
	f.BoolVar(&o.add, "add", false, "Add the algorithms matching the given names to the selection")
	f.BoolVar(&o.remove, "remove", false, "Remove the algorithms matching the given names from the selection")
	f.BoolVar(&o.none, "none", false, "Clear the selection")
	f.BoolVar(&o.showAll, "show-all", false, "Show every algorithm on the search paths")
	f.BoolVar(&o.showSelected, "show-selected", false, "Show the selected algorithms")
	f.StringVar(&o.showNamed, "show-named", "", "Show the algorithms in the saved list N")
	f.BoolVar(&o.listNamed, "list-named", false, "List the saved algorithm lists")
	f.StringVar(&o.saveAs, "save-as", "", "Save the selection as the list N")
	f.StringVar(&o.setDefault, "set-default", "", "Replace the selection with the saved list N")

	selectCmd.MarkFlagsMutuallyExclusive("add", "remove", "none", "show-all", "show-selected",
		"show-named", "list-named", "save-as", "set-default")
	return selectCmd
}

func (a *app) runSelect(cmd *cobra.Command, args []string, o *selectOptions) error {
	ctx := cmd.Context()
	m := a.selection()

	switch {
	case o.add:
		if len(args) == 0 {
			return errNoSelectNames
		}
		res, err := m.Add(ctx, args)
		if err != nil {
			return err
		}
		if len(res.Unmatched) > 0 {
			ux.Warning(ux.List("No algorithm matched: ", res.Unmatched))
		}
		if len(res.Added) == 0 {
			ux.Info("No new algorithms added.")
		} else {
			ux.Success(ux.List("Added ", registry.Strings(res.Added)))
		}
		return a.printList(m.Show, registry.SelectedList, "Selected algorithms")

	case o.remove:
		if len(args) == 0 {
			return errNoSelectNames
		}
		removed, err := m.Remove(args)
		if err != nil {
			return err
		}
		if len(removed) == 0 {
			ux.Info("No selected algorithm matched.")
		} else {
			ux.Success(ux.List("Removed ", registry.Strings(removed)))
		}
		return a.printList(m.Show, registry.SelectedList, "Selected algorithms")

	case o.none:
		if err := m.Clear(); err != nil {
			return err
		}
		ux.Success("Cleared the selected algorithms.")
		return nil

	case o.showAll:
		names, err := m.ShowAll(ctx)
		if err != nil {
			return err
		}
		a.printNames("Algorithms on the search paths", names)
		return nil

	case o.showNamed != "":
		return a.printList(m.Show, o.showNamed, fmt.Sprintf("Algorithms in %s", o.showNamed))

	case o.listNamed:
		lists, err := m.ListNamed()
		if err != nil {
			return err
		}
		if len(lists) == 0 {
			ux.Info("No saved algorithm lists.")
			return nil
		}
		ux.Title("Saved algorithm lists")
		for _, l := range lists {
			fmt.Fprintln(a.out, l)
		}
		return nil

	case o.saveAs != "":
		if err := m.SaveAs(o.saveAs); err != nil {
			return err
		}
		ux.Success(fmt.Sprintf("Saved the selected algorithms as %s.", o.saveAs))
		return nil

	case o.setDefault != "":
		set, err := m.SetDefault(o.setDefault)
		if err != nil {
			return err
		}
		ux.Success(fmt.Sprintf("Selected the algorithms in %s.", o.setDefault))
		set.Sort()
		a.printNames("Selected algorithms", set.Names())
		return nil
	}

	if len(args) > 0 {
		return errNoSelectNames
	}
	return a.printList(m.Show, registry.SelectedList, "Selected algorithms")
}

func (a *app) printList(show func(string) ([]registry.Name, error), list, title string) error {
	names, err := show(list)
	if err != nil {
		return err
	}
	a.printNames(title, names)
	return nil
}

func (a *app) printNames(title string, names []registry.Name) {
	if len(names) == 0 {
		ux.Info(title + ": none.")
		return
	}
	ux.Title(fmt.Sprintf("%s (%d)", title, len(names)))
	fmt.Fprint(a.out, ux.Columns(registry.Strings(names), ux.AlgoColumns))
}
