/*
Copyright 2025 Extropy Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package extropy

import (
	"embed"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/extropy-ai/extropy/config"
	"github.com/extropy-ai/extropy/database"
	redis_db "github.com/extropy-ai/extropy/internal/redis-db"
)

// Extropy is the service layer of the $EXTROPY ledger. It validates inputs,
// serializes writers per account and delegates atomic balance mutations to
// the datasource.
type Extropy struct {
	redis      redis.UniversalClient
	datasource database.IDataSource
}

//go:embed sql/*.sql
var SQLFiles embed.FS

// NewExtropy initializes the service with the provided datasource and the
// configured Redis connection.
func NewExtropy(db database.IDataSource) (*Extropy, error) {
	configuration, err := config.Fetch()
	if err != nil {
		return nil, err
	}
	redisClient, err := redis_db.NewRedisClient([]string{fmt.Sprintf("redis://%s", configuration.Redis.Dns)})
	if err != nil {
		return nil, err
	}
	newExtropy := &Extropy{datasource: db, redis: redisClient.Client()}
	return newExtropy, nil
}
