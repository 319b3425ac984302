package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"sportpredict/internal/domain"
	"sportpredict/internal/repository"
	"sportpredict/internal/service"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// Operator tool: lists pending withdrawals, or resolves one by id.
//
//	review_withdrawals
//	review_withdrawals -resolve 42 -status paid
//	review_withdrawals -resolve 42 -status rejected -notes "destination mismatch"
func main() {
	resolve := flag.Int64("resolve", 0, "withdrawal id to resolve")
	status := flag.String("status", "", "new status: approved, paid or rejected")
	notes := flag.String("notes", "", "review notes")
	flag.Parse()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL not set")
	}

	db, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	ctx := context.Background()

	if *resolve == 0 {
		repo := repository.NewWithdrawalRepository(db)
		pending, err := repo.GetPending(ctx)
		if err != nil {
			log.Fatalf("list pending: %v", err)
		}
		if len(pending) == 0 {
			fmt.Println("no pending withdrawals")
			return
		}
		for _, w := range pending {
			fmt.Printf("#%d user=%d amount=%s method=%s ref=%s requested=%s\n",
				w.ID, w.UserID, w.Amount.StringFixed(2), w.Method, w.Reference,
				w.CreatedAt.Format("2006-01-02 15:04"))
		}

		recent, err := repository.NewAuditRepository(db).GetByCategory(ctx, domain.AuditCategoryBalance, 20)
		if err != nil {
			log.Fatalf("list audit trail: %v", err)
		}
		if len(recent) > 0 {
			fmt.Println("\nrecent balance activity:")
			for _, a := range recent {
				fmt.Printf("  %s user=%d %s\n",
					a.CreatedAt.Format("2006-01-02 15:04"), a.UserID, a.Action)
			}
		}
		return
	}

	var target domain.WithdrawalStatus
	switch *status {
	case "approved":
		target = domain.WithdrawalApproved
	case "paid":
		target = domain.WithdrawalPaid
	case "rejected":
		target = domain.WithdrawalRejected
	default:
		log.Fatalf("invalid -status %q (want approved, paid or rejected)", *status)
	}

	balances := service.NewBalanceService(db, decimal.Zero)
	if err := balances.ResolveWithdrawal(ctx, *resolve, target, *notes); err != nil {
		log.Fatalf("resolve withdrawal %d: %v", *resolve, err)
	}
	fmt.Printf("withdrawal %d -> %s\n", *resolve, target)
}
