// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// Package model provides the in-memory representation of a deployment
// configuration: the clients, systems and release states that span the
// deployment space, the tenants and subscriptions that receive deployments,
// the deployment entries that say which subscriptions and regions serve a
// system/client/release combination, and the frames of applications and
// steps that are rolled out to each of them.
//
// # Core Concepts
//
//   - Configuration: the root container, loaded once per run and read-only
//     afterwards. It aggregates the blocks parsed from one or more .hcl files.
//
//   - Deployment: keyed by (system, client, release state). It lists the
//     subscriptions served and, per subscription, the locations (a primary
//     and an optional secondary region).
//
//   - Frame: a named set of applications that deploy together and may depend
//     on other frames. Applications are ordered lists of steps.
//
// Why a separate model package?
//
// The orchestration engine never touches HCL. Loading, translating and
// validating happen here, and a Configuration is only handed out once every
// check has passed, so the view and executor layers can rely on a complete,
// consistent graph without re-validating structure.
package model
