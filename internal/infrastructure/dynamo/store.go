package dynamo

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/go-pots-api/internal/domain"
)

// Store groups the repos behind the multi-document writes the engines need,
// keeping AWS types out of the application layer. Each method is a single
// TransactWriteItems call: every document moves, or none do.
type Store struct {
	users *UserRepo
	pots  *PotRepo
	txns  *TransactionRepo
	tx    *Transactor
}

func NewStore(users *UserRepo, pots *PotRepo, txns *TransactionRepo, tx *Transactor) *Store {
	return &Store{users: users, pots: pots, txns: txns, tx: tx}
}

// SavePotWithUser writes a pot and its owner together, both version-checked.
// Deposits and withdrawals use this so the wallet and the pot balance cannot
// drift apart.
func (s *Store) SavePotWithUser(ctx context.Context, p *domain.Pot, u *domain.User) error {
	potItem, err := s.pots.TxSave(p)
	if err != nil {
		return err
	}
	userItem, err := s.users.TxSave(u)
	if err != nil {
		return err
	}
	return s.tx.Write(ctx, potItem, userItem)
}

// WriteTransfer commits both wallets and the immutable transaction record as
// one unit.
func (s *Store) WriteTransfer(ctx context.Context, sender, receiver *domain.User, t *domain.Transaction) error {
	items := make([]types.TransactWriteItem, 0, 3)
	senderItem, err := s.users.TxSave(sender)
	if err != nil {
		return err
	}
	receiverItem, err := s.users.TxSave(receiver)
	if err != nil {
		return err
	}
	txnItem, err := s.txns.TxPut(t)
	if err != nil {
		return err
	}
	items = append(items, senderItem, receiverItem, txnItem)
	return s.tx.Write(ctx, items...)
}
