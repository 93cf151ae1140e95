// Package infra groups the adapters behind the core interfaces: zerolog
// logging, Prometheus and InfluxDB sinks, the MQTT plan publisher, Sentry
// monitoring and the appliance dataset reader.
package infra
