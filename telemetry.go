package server

// Telemetry counter keys surfaced by the diagnostics endpoint.
const (
	telemetryKeyBroadcastMessages = "hub_broadcast_messages_total"
	telemetryKeyBroadcastBytes    = "hub_broadcast_bytes_total"
	telemetryKeySlowClientDrops   = "hub_slow_client_drops_total"
	telemetryKeyTickOverruns      = "hub_tick_overruns_total"
	telemetryKeyQueueDepth        = "hub_command_queue_depth"
)
