// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"fmt"
	"os"
	"testing"

	"github.com/bitmark-inc/logger"
)

const (
	testingDirName   = "testing"
	databaseFileName = "testing/test.leveldb"
)

func TestMain(m *testing.M) {
	removeFiles()
	_ = os.Mkdir(testingDirName, 0700)

	logging := logger.Configuration{
		Directory: testingDirName,
		File:      "testing.log",
		Size:      1048576,
		Count:     10,
		Console:   false,
		Levels: map[string]string{
			logger.DefaultTag: "critical",
		},
	}
	if err := logger.Initialise(logging); nil != err {
		panic(fmt.Sprintf("logger initialization failed: %s", err))
	}

	rc := m.Run()

	logger.Finalise()
	removeFiles()
	os.Exit(rc)
}

func removeFiles() {
	_ = os.RemoveAll(testingDirName)
}

func setupLevelDB(t *testing.T) *LevelDB {
	_ = os.RemoveAll(databaseFileName)
	db, err := NewLevelDB(logger.New("storage"), databaseFileName)
	if nil != err {
		t.Fatalf("open leveldb error: %s", err)
	}
	return db
}
