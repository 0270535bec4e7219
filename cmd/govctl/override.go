package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"wealthos/governance/pkg/cli"
	"wealthos/governance/pkg/governance"
	"wealthos/governance/pkg/governance/override"
	"wealthos/governance/pkg/governance/storage"
)

var overrideFlags struct {
	file     string
	actor    string
	reason   string
	target   string
	status   string
	locale   string
	original float64
	amount   float64
	newValue float64
	kind     string
}

var overrideCmd = &cobra.Command{
	Use:   "override",
	Short: "Manage manual overrides",
	Long: `Manage manual corrections through the approval workflow.

Workflow:
  draft --submit--> pending --approve--> approved --apply--> applied
                    pending --reject---> rejected

An override cannot be approved or rejected by the person who requested it.`,
}

var overrideCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a draft override from a JSON request",
	Long: `Create a draft override. The file holds a request such as:

  {"target_type": "kpi", "target_id": "net_worth", "override_type": "adjustment",
   "value": {"adjustment_amount": -250, "currency": "USD"},
   "reason": "Duplicate bank feed entry on 2026-06-28", "requested_by": "u-17"}`,
	RunE: runOverrideCreate,
}

var overrideListCmd = &cobra.Command{
	Use:   "list",
	Short: "List overrides",
	RunE:  runOverrideList,
}

var overrideTransitionsCmd = &cobra.Command{
	Use:   "transitions <status>",
	Short: "List the actions allowed from a status",
	Args:  cobra.ExactArgs(1),
	RunE:  runOverrideTransitions,
}

var overrideAdjustCmd = &cobra.Command{
	Use:   "adjust",
	Short: "Preview the value an override would produce",
	Long: `Compute the adjusted value of a metric without storing anything.

Examples:
  govctl override adjust --original 1000 --amount 50
  govctl override adjust --original 1000 --type reclass --new-value 975`,
	RunE: runOverrideAdjust,
}

func init() {
	rootCmd.AddCommand(overrideCmd)
	overrideCmd.AddCommand(overrideCreateCmd, overrideListCmd, overrideTransitionsCmd, overrideAdjustCmd)

	for _, action := range []governance.OverrideAction{
		governance.ActionSubmit,
		governance.ActionApprove,
		governance.ActionReject,
		governance.ActionApply,
	} {
		overrideCmd.AddCommand(newTransitionCmd(action))
	}

	overrideCreateCmd.Flags().StringVarP(&overrideFlags.file, "file", "f", "", "override request JSON file (required)")

	overrideListCmd.Flags().StringVar(&overrideFlags.target, "target", "", "only overrides of this target id")
	overrideListCmd.Flags().StringVar(&overrideFlags.status, "status", "", "only overrides in this status")

	overrideTransitionsCmd.Flags().StringVar(&overrideFlags.locale, "locale", "", "label locale: en, ru, uk")

	overrideAdjustCmd.Flags().Float64Var(&overrideFlags.original, "original", 0, "original value")
	overrideAdjustCmd.Flags().Float64Var(&overrideFlags.amount, "amount", 0, "adjustment amount")
	overrideAdjustCmd.Flags().Float64Var(&overrideFlags.newValue, "new-value", 0, "replacement value for reclass and mapping_fix")
	overrideAdjustCmd.Flags().StringVar(&overrideFlags.kind, "type", string(governance.OverrideAdjustment), "override type: adjustment, reclass, mapping_fix")
}

func newTransitionCmd(action governance.OverrideAction) *cobra.Command {
	cmd := &cobra.Command{
		Use:   string(action) + " <override-id>",
		Short: strings.ToUpper(string(action[:1])) + string(action[1:]) + " an override",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOverrideTransition(cmd, args[0], action)
		},
	}
	cmd.Flags().StringVar(&overrideFlags.actor, "actor", "", "acting user id (required)")
	if action == governance.ActionReject {
		cmd.Flags().StringVar(&overrideFlags.reason, "reason", "", "rejection reason")
	}
	return cmd
}

func runOverrideCreate(cmd *cobra.Command, args []string) error {
	if overrideFlags.file == "" {
		return cli.NewConfigError("file", "--file is required")
	}
	data, err := os.ReadFile(overrideFlags.file)
	if err != nil {
		return cli.NewCommandError("override create", err)
	}
	var req override.Request
	if err := json.Unmarshal(data, &req); err != nil {
		return cli.NewConfigError("file", fmt.Sprintf("invalid override request: %v", err))
	}

	eng, err := openEngine(engineOptions{})
	if err != nil {
		return err
	}
	defer eng.Close()

	o, err := eng.runner.CreateOverride(commandContext(cmd), req)
	if err != nil {
		return cli.NewCommandError("override create", err)
	}
	return printResult(cmd, overrideTable{o})
}

func runOverrideTransition(cmd *cobra.Command, id string, action governance.OverrideAction) error {
	if overrideFlags.actor == "" {
		return cli.NewConfigError("actor", "--actor is required")
	}

	eng, err := openEngine(engineOptions{})
	if err != nil {
		return err
	}
	defer eng.Close()

	o, err := eng.runner.Transition(commandContext(cmd), id, action, overrideFlags.actor, overrideFlags.reason)
	if err != nil {
		return cli.NewCommandError("override "+string(action), err)
	}
	return printResult(cmd, overrideTable{o})
}

func runOverrideList(cmd *cobra.Command, args []string) error {
	eng, err := openEngine(engineOptions{})
	if err != nil {
		return err
	}
	defer eng.Close()

	all, err := storage.LoadAll[governance.Override](commandContext(cmd), eng.catalog, governance.CollectionOverrides)
	if err != nil {
		return cli.NewCommandError("override list", err)
	}

	out := make(overrideTable, 0, len(all))
	for _, o := range all {
		if overrideFlags.target != "" && o.TargetID != overrideFlags.target {
			continue
		}
		if overrideFlags.status != "" && string(o.StatusKey) != overrideFlags.status {
			continue
		}
		out = append(out, o)
	}
	return printResult(cmd, out)
}

// transitionsView lists the legal actions from one status.
type transitionsView struct {
	Status  governance.OverrideStatus   `json:"status"`
	Label   string                      `json:"label"`
	Actions []governance.OverrideAction `json:"actions"`
	locale  governance.Locale
}

func (v transitionsView) Header() []string {
	return []string{"ACTION", "TO", "TO_LABEL"}
}

func (v transitionsView) Rows() [][]string {
	rows := make([][]string, 0, len(v.Actions))
	for _, a := range v.Actions {
		to, err := override.Next(v.Status, a)
		if err != nil {
			continue
		}
		rows = append(rows, []string{string(a), string(to), to.Label(v.locale)})
	}
	return rows
}

func runOverrideTransitions(cmd *cobra.Command, args []string) error {
	status := governance.OverrideStatus(args[0])
	switch status {
	case governance.OverrideDraft, governance.OverridePending, governance.OverrideApproved,
		governance.OverrideRejected, governance.OverrideApplied:
	default:
		return governance.NewValidationError("override", fmt.Sprintf("unknown status %q", args[0]))
	}

	locale := governance.ParseLocale(overrideFlags.locale)
	return printResult(cmd, transitionsView{
		Status:  status,
		Label:   status.Label(locale),
		Actions: override.AvailableTransitions(status),
		locale:  locale,
	})
}

// adjustView is the output of override adjust.
type adjustView struct {
	Type     governance.OverrideType `json:"type"`
	Original float64                 `json:"original"`
	Adjusted float64                 `json:"adjusted"`
}

func (v adjustView) Header() []string { return []string{"TYPE", "ORIGINAL", "ADJUSTED"} }

func (v adjustView) Rows() [][]string {
	return [][]string{{string(v.Type), formatFloat(v.Original), formatFloat(v.Adjusted)}}
}

func runOverrideAdjust(cmd *cobra.Command, args []string) error {
	o := governance.Override{OverrideTypeKey: governance.OverrideType(overrideFlags.kind)}
	switch o.OverrideTypeKey {
	case governance.OverrideAdjustment:
		amount := overrideFlags.amount
		o.Value.AdjustmentAmount = &amount
	case governance.OverrideReclass, governance.OverrideMappingFix:
		if !cmd.Flags().Changed("new-value") {
			return cli.NewConfigError("new-value", "--new-value is required for "+overrideFlags.kind)
		}
		o.Value.NewValue = overrideFlags.newValue
	default:
		return cli.NewConfigError("type", fmt.Sprintf("unknown override type %q", overrideFlags.kind))
	}

	return printResult(cmd, adjustView{
		Type:     o.OverrideTypeKey,
		Original: overrideFlags.original,
		Adjusted: override.CalculateAdjustedValue(overrideFlags.original, o),
	})
}
