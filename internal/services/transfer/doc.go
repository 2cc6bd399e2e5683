/*
Package transfer moves funds between two accounts.

A transfer debits the sender by amount plus a commission and credits the
receiver by amount. Both balance changes and the ledger record are written in
one unit of work, or nothing is written at all.

Usage:

	svc := transfer.NewService(ledger, commission.NewCalculator(commission.DefaultRate), dispatcher, transfer.Config{}, nil, logger)

	result, err := svc.Transfer(ctx, senderID, receiverID, decimal.RequireFromString("100.00"))

Locking:

Both account rows are locked in ascending ID order inside the unit of work and
the sender balance is checked only after its lock is held. Transfers touching
disjoint accounts never wait on each other.

Error Handling:

  - ErrInvalidAmount: amount out of range or more than two decimal places
  - ErrSelfTransfer: sender and receiver are the same account
  - ErrAccountNotFound: either account is missing (see AccountNotFoundError)
  - ErrInsufficientFunds: balance below amount plus commission (see InsufficientFundsError)
  - ErrStoreFailure: the store failed or the deadline passed; nothing was written

Notification:

A committed transfer is handed to the Notifier with its own timeout,
detached from the caller's cancellation. Dispatch errors are logged and
dropped.
*/
package transfer
