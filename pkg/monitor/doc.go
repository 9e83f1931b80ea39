/*
Package monitor runs the background loops that keep alerting current
without any inbound traffic.

Two tickers share one goroutine. The evaluation loop snapshots system
health, applies the threshold rules, and pushes every breach through the
alert dispatcher; cooldown suppression in the dispatcher keeps repeated
breaches from flooding the channels. The cleanup loop evicts per-path
request metrics that have seen no traffic for a day, bounding memory on
long-lived processes with churning URL spaces.
*/
package monitor
