package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/airosofts/licensor/config"
	"github.com/spf13/cobra"
)

var plansCmd = &cobra.Command{
	Use:   "plans",
	Short: "Inspect the plan and software catalog",
	Long: `Inspect the plans buyers can subscribe to and the software they unlock.

Plans map the planId accepted by /subscribe to a payment-provider price.
Software entries map a provider product id to a downloadable product.

Examples:
  licensor plans list
  licensor plans get prod1_pro
  licensor plans software`,
}

var plansListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all plans",
	RunE:  runPlansList,
}

var plansGetCmd = &cobra.Command{
	Use:   "get <plan-id>",
	Short: "Get plan details",
	Args:  cobra.ExactArgs(1),
	RunE:  runPlansGet,
}

var plansSoftwareCmd = &cobra.Command{
	Use:   "software",
	Short: "List the software catalog",
	RunE:  runPlansSoftware,
}

func init() {
	rootCmd.AddCommand(plansCmd)

	plansCmd.AddCommand(plansListCmd)
	plansCmd.AddCommand(plansGetCmd)
	plansCmd.AddCommand(plansSoftwareCmd)
}

func runPlansList(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadWithFallback(cfgFile)
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}

	plans := cfg.Catalog().List()
	if len(plans) == 0 {
		fmt.Println("No plans configured.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPRICE ID")
	fmt.Fprintln(w, "--\t--------")
	for _, p := range plans {
		fmt.Fprintf(w, "%s\t%s\n", p.ID, p.PriceID)
	}
	return w.Flush()
}

func runPlansGet(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadWithFallback(cfgFile)
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}

	p, ok := cfg.Catalog().Lookup(args[0])
	if !ok {
		return fmt.Errorf("plan not found: %s", args[0])
	}

	fmt.Printf("ID:          %s\n", p.ID)
	fmt.Printf("Price:       %s\n", p.PriceID)
	fmt.Printf("Checkout:    %s/subscribe?planId=%s\n", cfg.URLs.BaseURL, p.ID)
	return nil
}

func runPlansSoftware(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadWithFallback(cfgFile)
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}

	entries := cfg.SoftwareEntries()
	if len(entries) == 0 {
		fmt.Println("No software configured. The stored catalog is left unchanged on start.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PRODUCT ID\tNAME\tDOWNLOAD")
	fmt.Fprintln(w, "----------\t----\t--------")
	for _, s := range entries {
		fmt.Fprintf(w, "%s\t%s\t%s\n", s.ProductID, s.Name, s.DownloadURL)
	}
	return w.Flush()
}
