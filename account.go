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
	"context"

	"github.com/extropy-ai/extropy/internal/notification"
	"github.com/extropy-ai/extropy/model"
)

func (l *Extropy) postAccountActions(_ context.Context, account *model.Account) {
	go func() {
		err := SendWebhook(NewWebhook{
			Event:   "account.created",
			Payload: account,
		})
		if err != nil {
			notification.NotifyError(err)
		}
	}()
}

// CreateAccount opens a new account with a zero balance.
func (l *Extropy) CreateAccount(ctx context.Context, account model.Account) (model.Account, error) {
	account, err := l.datasource.CreateAccount(ctx, account)
	if err != nil {
		return model.Account{}, err
	}
	l.postAccountActions(ctx, &account)
	return account, nil
}

func (l *Extropy) GetAccountByID(ctx context.Context, id string) (*model.Account, error) {
	return l.datasource.GetAccountByID(ctx, id)
}

func (l *Extropy) GetAllAccounts(ctx context.Context, limit, offset int) ([]model.Account, error) {
	return l.datasource.GetAllAccounts(ctx, limit, offset)
}
