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
	"fmt"

	"github.com/AleutianAI/smart/cmd/smart/config"
	"github.com/spf13/cobra"
)

func newConfigCmd(a *app) *cobra.Command {
	var showPath bool
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Long: `Print the effective configuration as YAML, after environment overrides
(SMART_CONFIG_DIR, SMART_DATA_DIR) are applied.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if showPath {
				path := a.configPath
				if path == "" {
					p, err := config.DefaultPath()
					if err != nil {
						return WrapExitError(err, "config")
					}
					path = p
				}
				fmt.Fprintln(a.out, path)
				return nil
			}
			data, err := config.Marshal(a.cfg)
			if err != nil {
				return WrapExitError(fmt.Errorf("marshal config: %w", err), "config")
			}
			_, err = a.out.Write(data)
			return WrapExitError(err, "config")
		},
	}
	configCmd.Flags().BoolVar(&showPath, "path", false, "Print the config file location instead")
	return configCmd
}
