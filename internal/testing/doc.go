// Package testing provides test infrastructure for pool transaction testing.
//
// It drives the transaction engine against an in-memory ledger chain, so
// tests exercise the same apply pipeline the daemon runs, without a service
// or any storage behind it.
//
// # Overview
//
// The package provides:
//   - TestEnv: a ledger environment with engine submission and close control
//   - Account and Mint: deterministic test identities derived from names
//   - Amount helpers: conversion between whole tokens and base units
//   - Assertions: balance, supply and reserve checks
//
// Fluent builders for the pool operations live in the pool subpackage.
//
// # Basic Usage
//
//	func TestSwap(t *testing.T) {
//	    env := testing.NewTestEnv(t)
//
//	    base := testing.NewMint("base", 6)
//	    quote := testing.NewMint("quote", 9)
//	    shares := testing.NewMint("swap-shares", testing.ShareDecimals)
//	    alice := testing.NewAccount("alice")
//
//	    env.Fund(alice, base, 2_000_000)
//	    env.Fund(alice, quote, 2_000_000)
//
//	    result := env.CreatePool(alice, base, quote, shares, 3, 1000)
//	    testing.RequireTxSuccess(t, result)
//
//	    result = env.Deposit(alice, base, quote, 1_000_000, 1_000_000, 1)
//	    testing.RequireTxSuccess(t, result)
//	    env.Close()
//	}
//
// # TestEnv
//
// TestEnv holds an open ledger on top of a genesis built from seed mints.
// Transactions submitted through it run under the environment's accounting
// policy, which defaults to hardened.
//
//	env := testing.NewTestEnv(t)
//	env.SetPolicy(tx.PolicyNaive)    // switch variants mid-test
//	env.Fund(alice, base, 1_000_000) // write a balance directly
//	env.Close()                      // close, validate, reopen
//	env.Balance(alice, base)         // read a token balance
//
// # Account and Mint
//
// Accounts and mints are derived from short names, so the same name always
// produces the same identity and failures print something readable.
//
//	alice := testing.NewAccount("alice")
//	base := testing.NewMint("base", 6)       // matches the default genesis mint
//	authority := testing.AuthorityAccount()  // the genesis authority
//
// # Assertions
//
//	testing.RequireTxSuccess(t, result)
//	testing.RequireTxResult(t, result, tx.TecSLIPPAGE_EXCEEDED)
//	testing.RequireBalance(t, env, alice, base, 990_000)
//	testing.RequireReserves(t, env, base, quote, 1_010_000, 990_129)
//
// # Clock Control
//
// The environment runs on a ManualClock. Close advances it so consecutive
// ledgers carry distinct close times.
//
//	env.AdvanceTime(10 * time.Second)
//	env.SetTime(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
//	env.Now()
package testing
