package cmd

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/vibast-solutions/lib-go-subtrack/app/entity"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List your subscriptions",
	Run: func(_ *cobra.Command, _ []string) {
		_, subscriptionService, cleanup := mustCreateSubscriptionService()
		defer cleanup()

		subscriptions, err := subscriptionService.Subscriptions(context.Background())
		if err != nil && subscriptions == nil {
			logrus.WithError(err).Fatal("Failed to list subscriptions")
		}
		if err != nil {
			logrus.WithError(err).Warn("Showing cached subscriptions, refresh failed")
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tPRICE\tCYCLE\tCATEGORY\tSTATUS\tNEXT BILLING")
		for _, sub := range subscriptions {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
				sub.ID, sub.Name, formatPrice(sub), sub.BillingCycle,
				sub.CategoryName, sub.Status, formatDate(sub.NextBillingDate))
		}
		_ = w.Flush()
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show subscription spending stats",
	Run: func(_ *cobra.Command, _ []string) {
		_, subscriptionService, cleanup := mustCreateSubscriptionService()
		defer cleanup()

		stats, err := subscriptionService.Stats(context.Background())
		if err != nil && stats == nil {
			logrus.WithError(err).Fatal("Failed to load stats")
		}
		if err != nil {
			logrus.WithError(err).Warn("Showing cached stats, refresh failed")
		}

		fmt.Printf("Total:     %d\n", stats.TotalCount)
		fmt.Printf("Active:    %d\n", stats.ActiveCount)
		fmt.Printf("Paused:    %d\n", stats.PausedCount)
		fmt.Printf("Cancelled: %d\n", stats.CancelledCount)
		fmt.Printf("Expired:   %d\n", stats.ExpiredCount)
		fmt.Printf("Billing within 7 days: %d\n", stats.UpcomingBilling)

		currencies := make([]string, 0, len(stats.MonthlySpend))
		for currency := range stats.MonthlySpend {
			currencies = append(currencies, currency)
		}
		sort.Strings(currencies)
		for _, currency := range currencies {
			fmt.Printf("Monthly spend: %.2f %s\n", stats.MonthlySpend[currency], currency)
		}
	},
}

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List catalog categories",
	Run: func(_ *cobra.Command, _ []string) {
		_, subscriptionService, cleanup := mustCreateSubscriptionService()
		defer cleanup()

		categories, err := subscriptionService.Categories(context.Background())
		if err != nil && categories == nil {
			logrus.WithError(err).Fatal("Failed to list categories")
		}
		if err != nil {
			logrus.WithError(err).Warn("Showing cached categories, refresh failed")
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tICON")
		for _, category := range categories {
			fmt.Fprintf(w, "%d\t%s\t%s\n", category.ID, category.Name, category.Icon)
		}
		_ = w.Flush()
	},
}

var catalogCmd = &cobra.Command{
	Use:   "catalog [category-id]",
	Short: "Browse catalog subscriptions, optionally within one category",
	Args:  cobra.MaximumNArgs(1),
	Run: func(_ *cobra.Command, args []string) {
		var categoryID uint64
		if len(args) == 1 {
			categoryID = mustParseID(args[0])
		}

		_, subscriptionService, cleanup := mustCreateSubscriptionService()
		defer cleanup()

		catalog, err := subscriptionService.CatalogSubscriptions(context.Background(), categoryID)
		if err != nil && catalog == nil {
			logrus.WithError(err).Fatal("Failed to browse catalog")
		}
		if err != nil {
			logrus.WithError(err).Warn("Showing cached catalog, refresh failed")
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tCATEGORY")
		for _, item := range catalog {
			fmt.Fprintf(w, "%d\t%s\t%s\n", item.ID, item.Name, item.Category.Name)
		}
		_ = w.Flush()
	},
}

var plansCmd = &cobra.Command{
	Use:   "plans <catalog-subscription-id>",
	Short: "Show the plans of one catalog subscription",
	Args:  cobra.ExactArgs(1),
	Run: func(_ *cobra.Command, args []string) {
		id := mustParseID(args[0])

		_, subscriptionService, cleanup := mustCreateSubscriptionService()
		defer cleanup()

		details, err := subscriptionService.CatalogSubscriptionDetails(context.Background(), id)
		if err != nil && details == nil {
			logrus.WithError(err).Fatal("Failed to load catalog subscription")
		}
		if err != nil {
			logrus.WithError(err).Warn("Showing cached catalog subscription, refresh failed")
		}

		fmt.Printf("%s (category: %s)\n", details.Name, details.Category.Name)
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "PLAN ID\tNAME\tCYCLE\tPRICES")
		for _, plan := range details.Plans {
			prices := ""
			for i, price := range plan.Prices {
				if i > 0 {
					prices += ", "
				}
				prices += fmt.Sprintf("%.2f %s", price.Amount, price.Currency)
			}
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", plan.ID, plan.Name, plan.BillingCycle, prices)
		}
		_ = w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(categoriesCmd)
	rootCmd.AddCommand(catalogCmd)
	rootCmd.AddCommand(plansCmd)
}

func formatPrice(sub *entity.NormalizedSubscription) string {
	if sub.PriceMissing {
		return "-"
	}
	return fmt.Sprintf("%.2f %s", sub.Price, sub.Currency)
}

func formatDate(date *time.Time) string {
	if date == nil {
		return "-"
	}
	return date.Format("2006-01-02")
}

func mustParseID(raw string) uint64 {
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		logrus.WithField("id", raw).Fatal("Invalid id argument")
	}
	return id
}
