// Package testsupport builds isolated lqcli configurations for tests.
package testsupport
