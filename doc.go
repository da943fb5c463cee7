// Package reserve tracks a strategic reserve of a single asset (Bitcoin by
// default). It is designed to be local-first: the transaction log lives in a
// local key-value store and every figure is recomputed from it.
//
// The core functionalities include:
//   - Transaction Log: an insertion ordered list of buy and sell transactions
//     (see Ledger), encoded as a json array of {type, amount, price, date}.
//   - Aggregation: a stateless computation of holdings, invested capital,
//     current value, profit and loss and average cost (see Aggregate).
//   - Price Series: historical prices bucketed by day or by week, with buy
//     transactions marked on the chart (see Chart).
//
// All amounts are exact decimals. This package serves as the foundational
// logic for the `rsv` command-line tool.
package reserve
