// Package database provides PostgreSQL connection pools and a transactional
// statement gateway on top of them.
//
// Two pools are kept:
//   - Primary: snapshot writes and all transactions
//   - Alternate: the secondary (local) target, used for standalone statements
//
// Transactions are explicit: Begin checks out a primary connection and issues
// BEGIN, Commit and Rollback issue the matching statement and always hand the
// connection back to its pool, whether or not the statement itself succeeded.
package database
