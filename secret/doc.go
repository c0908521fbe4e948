// Package secret keeps connection strings and tokens out of the busprobe
// configuration file.
//
// A configuration value is first expanded from the environment (see
// ExpandEnvStrict), then any secret reference in it is replaced by the
// provider it names:
//
//	connection_string: secretref:env:ORDERS_CONNECTION_STRING
//	token: secretref:file:/var/run/secrets/servicebus/token
//	namespace: ${SB_NAMESPACE}.servicebus.windows.net
//
// The env and file providers are registered on DefaultRegistry; other
// providers are added with Registry.Register and configured under the
// secrets key of the configuration file.
package secret
