package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"wealthos/governance/pkg/cli"
	"wealthos/governance/pkg/governance"
)

var catalogFlags struct {
	file string
}

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Load and inspect catalog documents",
	Long: `Load and inspect documents of the governance catalog.

Governance collections:
  dataKpis             metric definitions
  dataLineage          lineage records
  dataOverrides        overrides
  dataGovernanceRules  rules stored in the catalog

Any other name is a raw source collection read by lineage inputs and
reconciliations, for example accounts, holdings or bankStatements.`,
}

var catalogPutCmd = &cobra.Command{
	Use:   "put <collection>",
	Short: "Insert or replace documents from a JSON file",
	Long: `Insert or replace documents. The file holds one JSON object or an array
of objects. An object's "id" field selects the document to replace; objects
without one get a new id.

Examples:
  govctl catalog put dataKpis --file kpis.json
  govctl catalog put bankStatements --file statements-2026-06.json`,
	Args: cobra.ExactArgs(1),
	RunE: runCatalogPut,
}

var catalogGetCmd = &cobra.Command{
	Use:   "get <collection> <id>",
	Short: "Print one document",
	Args:  cobra.ExactArgs(2),
	RunE:  runCatalogGet,
}

var catalogListCmd = &cobra.Command{
	Use:   "list <collection>",
	Short: "List the documents of a collection",
	Args:  cobra.ExactArgs(1),
	RunE:  runCatalogList,
}

var catalogDeleteCmd = &cobra.Command{
	Use:   "delete <collection> <id>",
	Short: "Delete one document",
	Args:  cobra.ExactArgs(2),
	RunE:  runCatalogDelete,
}

func init() {
	rootCmd.AddCommand(catalogCmd)
	catalogCmd.AddCommand(catalogPutCmd, catalogGetCmd, catalogListCmd, catalogDeleteCmd)
	catalogPutCmd.Flags().StringVarP(&catalogFlags.file, "file", "f", "", "JSON file (required)")
}

// splitDocuments accepts one object or an array of objects.
func splitDocuments(data []byte) ([]json.RawMessage, error) {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var docs []json.RawMessage
		if err := json.Unmarshal(data, &docs); err != nil {
			return nil, err
		}
		return docs, nil
	}
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, err
	}
	return []json.RawMessage{data}, nil
}

func documentID(doc json.RawMessage) string {
	var probe struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(doc, &probe); err != nil {
		return ""
	}
	return probe.ID
}

type documentTable []*governance.Document

func (t documentTable) Header() []string {
	return []string{"COLLECTION", "ID", "CREATED_AT", "UPDATED_AT", "BYTES"}
}

func (t documentTable) Rows() [][]string {
	rows := make([][]string, 0, len(t))
	for _, d := range t {
		rows = append(rows, []string{d.Collection, d.ID, formatTime(d.CreatedAt), formatTime(d.UpdatedAt), fmt.Sprint(len(d.Data))})
	}
	return rows
}

func runCatalogPut(cmd *cobra.Command, args []string) error {
	if catalogFlags.file == "" {
		return cli.NewConfigError("file", "--file is required")
	}
	data, err := os.ReadFile(catalogFlags.file)
	if err != nil {
		return cli.NewCommandError("catalog put", err)
	}
	docs, err := splitDocuments(data)
	if err != nil {
		return cli.NewConfigError("file", fmt.Sprintf("%s must hold a JSON object or array of objects: %v", catalogFlags.file, err))
	}

	eng, err := openEngine(engineOptions{})
	if err != nil {
		return err
	}
	defer eng.Close()
	ctx := commandContext(cmd)

	stored := make(documentTable, 0, len(docs))
	for _, doc := range docs {
		d, err := eng.catalog.Put(ctx, args[0], documentID(doc), doc)
		if err != nil {
			return cli.NewCommandError("catalog put", err)
		}
		stored = append(stored, d)
	}
	return printResult(cmd, stored)
}

func runCatalogGet(cmd *cobra.Command, args []string) error {
	eng, err := openEngine(engineOptions{})
	if err != nil {
		return err
	}
	defer eng.Close()

	doc, err := eng.catalog.Get(commandContext(cmd), args[0], args[1])
	if err != nil {
		return cli.NewCommandError("catalog get", err)
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, doc.Data, "", "  "); err != nil {
		return cli.NewCommandError("catalog get", err)
	}
	buf.WriteByte('\n')
	_, err = cmd.OutOrStdout().Write(buf.Bytes())
	return err
}

func runCatalogList(cmd *cobra.Command, args []string) error {
	eng, err := openEngine(engineOptions{})
	if err != nil {
		return err
	}
	defer eng.Close()

	docs, err := eng.catalog.List(commandContext(cmd), args[0])
	if err != nil {
		return cli.NewCommandError("catalog list", err)
	}
	return printResult(cmd, documentTable(docs))
}

func runCatalogDelete(cmd *cobra.Command, args []string) error {
	eng, err := openEngine(engineOptions{})
	if err != nil {
		return err
	}
	defer eng.Close()

	if err := eng.catalog.Delete(commandContext(cmd), args[0], args[1]); err != nil {
		return cli.NewCommandError("catalog delete", err)
	}
	cmd.PrintErrf("deleted %s/%s\n", args[0], args[1])
	return nil
}
