/*
Package ledger owns every balance mutation in the application.

All money movement goes through transaction entries; a user's balance
must always equal the sum of their completed deposits and profits minus
their completed withdrawals. The service enforces that by funneling
every credit and debit through Apply, CreditInvestment, or the
withdrawal settlement path, each of which writes the ledger entry and
the balance delta in one store transaction.

CreditInvestment is the exactly-once payout primitive: it first claims
the investment with a guarded status update, and only the caller that
wins the claim appends the profit entry. Losers get ErrAlreadyClaimed
and must not credit.
*/
package ledger
