// Package notifier delivers change events from the coordinator to connected
// clients: dashboards, driver apps, the chat relay and the export bridges.
//
// Delivery is best effort and at least once. It is ordered per subscriber
// and per entity, never durable: a client that disconnects or falls behind
// resubscribes and uses the sequence numbers to detect what it missed.
package notifier
