// Package jobs provides scheduled background tasks for the pizza workflow
// service.
//
// This package implements cron-based jobs using github.com/robfig/cron/v3.
// Schedules are cron specs with a leading seconds field.
//
// # Available Jobs
//
// 1. InstanceRecoveryJob - re-drives instances persisted as Validating or Processing that have no runner
// 2. ValidationExpiryJob - expires instances waiting for validation past the timeout (only when a timeout is set)
//
// # Usage
//
//	jobManager := jobs.NewJobManager(recoverHandler, expireHandler, jobs.Config{
//		RecoverySchedule: "*/30 * * * * *",
//	}, logger)
//
//	if err := jobManager.StartAll(); err != nil {
//		log.Fatal("Failed to start jobs:", err)
//	}
//	defer jobManager.StopAll()
//
// # Error Handling
//
// A failed pass is logged and retried on the next tick. A job that fails to
// start stops the jobs already running.
package jobs
