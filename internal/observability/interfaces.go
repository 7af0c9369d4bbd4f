// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package observability

// Observable is implemented by pipeline components that report through an
// observer; the name becomes the "component" field of their records.
type Observable interface {
	GetComponentName() string
}

// ComponentName returns the component name of v, or fallback when v does
// not implement Observable.
func ComponentName(v interface{}, fallback string) string {
	if o, ok := v.(Observable); ok {
		return o.GetComponentName()
	}
	return fallback
}
