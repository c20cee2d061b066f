package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"mapi"
	"mapi/internal/config"
)

type providerInfo struct {
	Name     string `json:"name"`
	Media    string `json:"media"`
	APIKey   bool   `json:"api_key"`
	BaseURL  string `json:"base_url"`
	Language string `json:"language,omitempty"`
	Cached   bool   `json:"cache"`
}

func newProvidersCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "providers",
		Short: "List metadata providers and their configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			infos := describeProviders(ctx.configValue())
			if asJSON {
				return writeJSON(cmd, infos)
			}
			rows := make([][]string, 0, len(infos))
			for _, info := range infos {
				rows = append(rows, []string{info.Name, info.Media, yesNo(info.APIKey), info.Language, info.BaseURL})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Provider", "Media", "API Key", "Language", "Base URL"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignLeft},
			))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit the provider list as JSON")
	return cmd
}

func describeProviders(cfg *config.Config) []providerInfo {
	names := mapi.Providers()
	infos := make([]providerInfo, 0, len(names))
	for _, name := range names {
		info := providerInfo{Name: name}
		if mapi.HasProviderSupport(name, mapi.MediaTelevision) {
			info.Media = string(mapi.MediaTelevision)
		} else {
			info.Media = string(mapi.MediaMovie)
		}
		if cfg != nil {
			if section, ok := cfg.ProviderSettings(name); ok {
				info.APIKey = strings.TrimSpace(section.APIKey) != ""
				info.BaseURL = section.BaseURL
				info.Language = section.Language
			}
			info.Cached = cfg.Cache.Enabled
		}
		infos = append(infos, info)
	}
	return infos
}
