// Package reconcile periodically heals cached star levels.
//
// Response writes keep an audit's cached star level fresh, but catalog
// reloads change weights and question sets without touching any audit, so
// caches drift until the next write. The Scheduler sweeps every in-progress
// audit on a cron schedule (default: daily at 3 AM), recomputes its score,
// and corrects the cache where it disagrees. Completed audits are never
// touched: their star level is frozen.
package reconcile
