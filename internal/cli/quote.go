package cli

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/LeJamon/goAMMd/internal/core/tx"
	"github.com/LeJamon/goAMMd/internal/core/tx/pool"
)

var (
	quoteReserveIn  uint64
	quoteReserveOut uint64
	quoteFee        string
	quotePolicy     string
)

var quoteCmd = &cobra.Command{
	Use:   "quote <amount_in>",
	Short: "Price a swap offline from explicit reserves",
	Long: `Compute the output of a swap without a running daemon, using the same
pricing rules the engine applies. Reserves and fee terms come from flags;
use the quote RPC method to price against a live pool instead.`,
	Args: cobra.ExactArgs(1),
	RunE: runQuote,
}

func init() {
	rootCmd.AddCommand(quoteCmd)

	quoteCmd.Flags().Uint64Var(&quoteReserveIn, "reserve-in", 0, "pool reserve of the input asset")
	quoteCmd.Flags().Uint64Var(&quoteReserveOut, "reserve-out", 0, "pool reserve of the output asset")
	quoteCmd.Flags().StringVar(&quoteFee, "fee", "3/1000", "swap fee as numerator/denominator")
	quoteCmd.Flags().StringVar(&quotePolicy, "policy", "hardened", "accounting policy (naive or hardened)")
	quoteCmd.MarkFlagRequired("reserve-in")
	quoteCmd.MarkFlagRequired("reserve-out")
}

func runQuote(cmd *cobra.Command, args []string) error {
	amountIn, err := strconv.ParseUint(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid amount_in %q: %w", args[0], err)
	}

	feeNum, feeDen, err := parseFee(quoteFee)
	if err != nil {
		return err
	}

	policy, err := tx.ParsePolicy(quotePolicy)
	if err != nil {
		return err
	}

	quote, result := pool.Price(policy, quoteReserveIn, quoteReserveOut, amountIn, feeNum, feeDen)
	if result != tx.TesSUCCESS {
		return fmt.Errorf("%s: %s", result.String(), result.Message())
	}

	data, err := json.MarshalIndent(quote, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}

// parseFee splits "3/1000" into numerator and denominator.
func parseFee(s string) (uint64, uint64, error) {
	numStr, denStr, ok := strings.Cut(s, "/")
	if !ok {
		return 0, 0, fmt.Errorf("fee must be numerator/denominator, got %q", s)
	}
	num, err := strconv.ParseUint(strings.TrimSpace(numStr), 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid fee numerator %q: %w", numStr, err)
	}
	den, err := strconv.ParseUint(strings.TrimSpace(denStr), 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid fee denominator %q: %w", denStr, err)
	}
	return num, den, nil
}
