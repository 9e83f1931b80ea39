/*
Package store is the thin Postgres access layer Vitals shares with the
Gatherly backend: anomaly records are filed here for later human triage,
and summarized request-log counts are read back for detailed health
reporting. No monitoring state lives in the database; everything the
aggregator and dispatcher track is in-memory and lost on restart.
*/
package store
