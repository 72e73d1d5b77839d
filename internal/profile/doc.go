// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package profile loads dispatcher profiles.
//
// A profile is a YAML (.yaml, .yml) or HCL (.hcl) file naming the scheduler,
// the remote login and the output toggles of a dispatcher. Local paths are
// read through FsFactory; anything that looks like a URL is fetched with
// go-getter, so git, http and s3 sources all work.
package profile
