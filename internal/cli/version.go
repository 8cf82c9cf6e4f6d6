// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// newVersionCommand builds "albert version".
func newVersionCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  usageArgs(cobra.NoArgs),
		Annotations: map[string]string{
			optionalConfig: "true",
		},
		Run: func(cmd *cobra.Command, _ []string) {
			w := cmd.OutOrStdout()
			fmt.Fprintln(w, TitleStyle.Render("albert "+versionString(a.info)))
			fmt.Fprintln(w, LabelStyle.Render("Commit")+orUnknown(a.info.Commit))
			fmt.Fprintln(w, LabelStyle.Render("Built")+orUnknown(a.info.Date))
			fmt.Fprintln(w, LabelStyle.Render("Go")+runtime.Version()+" "+runtime.GOOS+"/"+runtime.GOARCH)
		},
	}
}

func versionString(info BuildInfo) string {
	if info.Version == "" {
		return "dev"
	}
	return info.Version
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}
