package cmd

import (
	"context"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/vibast-solutions/lib-go-subtrack/app/service"
	"github.com/vibast-solutions/lib-go-subtrack/app/types"
)

var (
	presetReq types.CreatePresetRequest
	customReq types.CreateCustomRequest

	updatePrice       float64
	updateNextBilling string
	updateStatus      string
	updateNotes       string
)

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a subscription",
}

var addPresetCmd = &cobra.Command{
	Use:   "preset",
	Short: "Subscribe to a catalog plan",
	Run: func(_ *cobra.Command, _ []string) {
		_, subscriptionService, cleanup := mustCreateSubscriptionService()
		defer cleanup()

		result, err := subscriptionService.AddPresetSubscription(context.Background(), &presetReq)
		if err != nil {
			logrus.WithError(err).Fatal("Failed to add subscription")
		}
		reportMutation("Subscription added", result)
	},
}

var addCustomCmd = &cobra.Command{
	Use:   "custom",
	Short: "Track a subscription that is not in the catalog",
	Run: func(_ *cobra.Command, _ []string) {
		_, subscriptionService, cleanup := mustCreateSubscriptionService()
		defer cleanup()

		result, err := subscriptionService.AddCustomSubscription(context.Background(), &customReq)
		if err != nil {
			logrus.WithError(err).Fatal("Failed to add subscription")
		}
		reportMutation("Subscription added", result)
	},
}

var updateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update a subscription",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		id := mustParseID(args[0])

		req := &types.UpdateSubscriptionRequest{}
		if cmd.Flags().Changed("price") {
			req.CustomPrice = &updatePrice
		}
		if cmd.Flags().Changed("next-billing") {
			req.NextBillingDate = &updateNextBilling
		}
		if cmd.Flags().Changed("status") {
			req.Status = &updateStatus
		}
		if cmd.Flags().Changed("notes") {
			req.Notes = &updateNotes
		}

		_, subscriptionService, cleanup := mustCreateSubscriptionService()
		defer cleanup()

		result, err := subscriptionService.UpdateSubscription(context.Background(), id, req)
		if err != nil {
			logrus.WithError(err).Fatal("Failed to update subscription")
		}
		reportMutation("Subscription updated", result)
	},
}

var removeCmd = &cobra.Command{
	Use:   "remove <id>",
	Short: "Delete a subscription",
	Args:  cobra.ExactArgs(1),
	Run: func(_ *cobra.Command, args []string) {
		id := mustParseID(args[0])

		_, subscriptionService, cleanup := mustCreateSubscriptionService()
		defer cleanup()

		result, err := subscriptionService.DeleteSubscription(context.Background(), id)
		if err != nil {
			logrus.WithError(err).Fatal("Failed to delete subscription")
		}
		reportMutation("Subscription deleted", result)
	},
}

func init() {
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(removeCmd)
	addCmd.AddCommand(addPresetCmd)
	addCmd.AddCommand(addCustomCmd)

	addPresetCmd.Flags().Uint64Var(&presetReq.PlanID, "plan", 0, "Catalog plan id")
	addPresetCmd.Flags().StringVar(&presetReq.StartDate, "start", "", "Start date (YYYY-MM-DD)")
	addPresetCmd.Flags().StringVar(&presetReq.NextBillingDate, "next-billing", "", "Next billing date (YYYY-MM-DD)")
	addPresetCmd.Flags().StringVar(&presetReq.Notes, "notes", "", "Free-form notes")

	addCustomCmd.Flags().StringVar(&customReq.CustomName, "name", "", "Subscription name")
	addCustomCmd.Flags().Uint64Var(&customReq.CustomCategoryID, "category", 0, "Category id")
	addCustomCmd.Flags().Float64Var(&customReq.CustomPrice, "price", 0, "Price per billing cycle")
	addCustomCmd.Flags().StringVar(&customReq.CustomCurrency, "currency", "", "Price currency code")
	addCustomCmd.Flags().StringVar(&customReq.CustomBillingCycle, "billing-cycle", "", "Billing cycle (weekly, monthly, yearly)")
	addCustomCmd.Flags().StringVar(&customReq.StartDate, "start", "", "Start date (YYYY-MM-DD)")
	addCustomCmd.Flags().StringVar(&customReq.NextBillingDate, "next-billing", "", "Next billing date (YYYY-MM-DD)")
	addCustomCmd.Flags().StringVar(&customReq.Notes, "notes", "", "Free-form notes")

	updateCmd.Flags().Float64Var(&updatePrice, "price", 0, "New price (custom subscriptions only)")
	updateCmd.Flags().StringVar(&updateNextBilling, "next-billing", "", "New next billing date (YYYY-MM-DD)")
	updateCmd.Flags().StringVar(&updateStatus, "status", "", "New status (active, cancelled, expired, paused)")
	updateCmd.Flags().StringVar(&updateNotes, "notes", "", "New notes")
}

func reportMutation(message string, result *service.MutationResult) {
	entry := logrus.WithField("invalidated", len(result.Invalidated))
	if result.Subscription != nil {
		entry = entry.WithField("subscription_id", result.Subscription.ID)
	}
	entry.Info(message)
}
