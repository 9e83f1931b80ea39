/*
Package notify implements the notification channels alerts fan out to.

Four channel classes exist: webhook (generic JSON POST), email (via the
backend's mail gateway), sms (via an SMS gateway API, critical alerts
only), and log (structured log line, the low-priority destination).

Channels are independent: the dispatcher sends to each selected channel in
its own goroutine and collects results individually, so one channel's
failure never blocks or aborts the others.
*/
package notify
