// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/pdiddy/referee-engine/internal/identity"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <name>",
	Short: "Resolve a person to a research profile",
	Long: `Resolve looks a person up in the enabled catalogs, by ORCID when given and
otherwise by name, and disambiguates homonyms with the institution.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runResolve,
}

func runResolve(cmd *cobra.Command, args []string) error {
	orcid, _ := cmd.Flags().GetString("orcid")
	institution, _ := cmd.Flags().GetString("institution")
	asJSON, _ := cmd.Flags().GetBool("json")

	cats, inst := newCatalogs()
	if len(cats) == 0 {
		return fmt.Errorf("no catalogs enabled")
	}
	res := newSession(cats, inst).Resolve(context.Background(), identity.Query{
		Name:         strings.Join(args, " "),
		PersistentID: orcid,
		Institution:  institution,
	})

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			Status  identity.Status `json:"status"`
			Profile any             `json:"profile,omitempty"`
		}{res.Status, res.Profile})
	}

	fmt.Printf("status: %s\n", res.Status)
	if !res.Status.Resolved() {
		return nil
	}
	p := res.Profile
	fmt.Printf("%s (%s %s)\n", p.DisplayName, p.Source, p.AuthorID)
	if p.LastKnownInstitution != "" {
		fmt.Printf("  %s\n", p.LastKnownInstitution)
	}
	fmt.Printf("  h-index %d, %d papers, %d citations\n", p.HIndex, p.PaperCount, p.CitationCount)
	if len(p.ResearchTopics) > 0 {
		fmt.Printf("  topics: %s\n", strings.Join(p.ResearchTopics, "; "))
	}
	for _, tp := range p.TopPapers {
		fmt.Printf("  - %s (%d, %d citations)\n", tp.Title, tp.Year, tp.Citations)
	}
	return nil
}

func init() {
	resolveCmd.Flags().String("orcid", "", "ORCID identifier")
	resolveCmd.Flags().String("institution", "", "institution used to disambiguate homonyms")
	resolveCmd.Flags().Bool("json", false, "output as JSON")

	rootCmd.AddCommand(resolveCmd)
}
