package banking

import (
	"context"
	"time"

	"github.com/chris/ethicalbank/pkg/auth"
	"github.com/chris/ethicalbank/pkg/events"
	"github.com/chris/ethicalbank/pkg/logging"
	"github.com/chris/ethicalbank/pkg/models"
	"github.com/chris/ethicalbank/pkg/storage/mocks"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	owner    = auth.Principal{UserID: "user1", IPAddress: "10.0.0.1", UserAgent: "test"}
	stranger = auth.Principal{UserID: "user2"}
	fixedNow = time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)
)

func newTestService(store *mocks.Storage, publisher events.Publisher) (*Service, *Metrics) {
	m := NewMetrics(prometheus.NewRegistry())
	svc := NewService(store, publisher, m, logging.Discard(), 3)
	svc.now = func() time.Time { return fixedNow }
	return svc, m
}

func testAccount(id, userID, balance string) *models.Account {
	return &models.Account{
		Id:            id,
		UserId:        userID,
		AccountNumber: "40000000000" + id,
		Type:          models.CHECKING,
		Balance:       models.MustMoney(balance),
		Currency:      "INR",
		Status:        models.ACTIVE,
		Version:       4,
		CreatedAt:     fixedNow.Add(-time.Hour),
		UpdatedAt:     fixedNow.Add(-time.Hour),
	}
}

// fresh returns a mock return function that hands out a copy of account on every call,
// so a retried read sees the stored state instead of the previous attempt's mutations.
func fresh(account *models.Account) func(context.Context, string) (*models.Account, error) {
	return func(context.Context, string) (*models.Account, error) {
		c := *account
		return &c, nil
	}
}
