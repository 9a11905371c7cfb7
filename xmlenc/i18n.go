// Copyright 2020 Readium Foundation. All rights reserved.
// Use of this source code is governed by a BSD-style license
// that can be found in the LICENSE file exposed on Github (readium) in the project repository.

package xmlenc

import (
	"sync"

	"github.com/nicksnyder/go-i18n/i18n"
)

// Error-kind descriptions are loaded into a go-i18n translation catalog the
// same way the rest of the Readium stack localizes user-facing strings;
// here it backs the Kind descriptions surfaced through Error.Error() and
// the error sink, not a full message-of-the-day catalog.
const errorCatalog = `[
	{"id": "malloc", "translation": "allocation failure"},
	{"id": "xml_failure", "translation": "XML primitive failed"},
	{"id": "invalid_node", "translation": "unexpected element"},
	{"id": "node_not_found", "translation": "required element missing"},
	{"id": "node_already_present", "translation": "element already present"},
	{"id": "invalid_data", "translation": "schema-legal but unusable data"},
	{"id": "invalid_type", "translation": "unrecognized Type URI"},
	{"id": "invalid_transform", "translation": "transform lacks Binary capability"},
	{"id": "key_not_found", "translation": "key resolution returned no key"},
	{"id": "transform_failure", "translation": "underlying cipher or codec failed"}
]`

var (
	i18nOnce sync.Once
	i18nT    i18n.TranslateFunc
)

func describe(kind Kind) string {
	i18nOnce.Do(func() {
		if err := i18n.ParseTranslationFileBytes("en-us.all.json", []byte(errorCatalog)); err != nil {
			i18nT = func(id string, _ ...interface{}) string { return id }
			return
		}
		t, err := i18n.Tfunc("en-US")
		if err != nil {
			i18nT = func(id string, _ ...interface{}) string { return id }
			return
		}
		i18nT = t
	})
	return i18nT(string(kind))
}
