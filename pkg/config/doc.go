/*
Package config loads the Vitals configuration from YAML with sane defaults.

Connection secrets (database URL, storage credentials) can also come from
environment variables so that no secret needs to live in the config file:

	VITALS_DATABASE_URL
	VITALS_STORAGE_ENDPOINT
	VITALS_STORAGE_ACCESS_KEY
	VITALS_STORAGE_SECRET_KEY

Default probe thresholds are intentionally asymmetric: the primary datastore
is expected to answer within 100ms while the object store gets 300ms before
a probe is considered degraded.
*/
package config
