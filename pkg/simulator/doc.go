// Copyright 2025 Raywall Malheiros de Souza
// Licensed under the Mozilla Public License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	https://www.mozilla.org/en-US/MPL/2.0/
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// Package simulator implementa a política comum dos endpoints simulados
// (banco, gaming, receita e licenças) usados em testes de integração.
//
// Cada requisição percorre uma ordem fixa de verificações, e a primeira condição
// verdadeira encerra o processamento:
//
//	1. Falha injetada   -> status configurado (401, 429, 500, 503...)
//	2. Validação        -> 400 quando faltam parâmetros obrigatórios
//	3. Gate da rota     -> 404 quando o parâmetro difere do valor fixo esperado
//	4. Leitura fixture  -> 500 quando o documento não existe ou é inválido
//	5. Matching         -> 200 com a fixture intacta, ou 404
//
// Variantes de matching:
//   - ExactSingleField: parâmetro obrigatório igual ao campo da fixture.
//   - ExactDualField: dois parâmetros iguais a dois campos; basta um presente para
//     seguir ao matching, e match parcial é tratado como 404.
//   - OptionalSingleField: parâmetro ausente funciona como curinga.
//   - ExpressionRule: expressão CEL sobre `request` e `fixture`.
//
// Nenhum estado é compartilhado entre requisições. A fonte aleatória é plugável
// (FixedSource) para que os testes forcem os dois ramos da falha injetada.
//
// Exemplo de uso programático:
//
//	ep, err := simulator.Build(cfg.Servers[0].Endpoints[0], fixture.NewUniversalLoader(), rm)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	resp := ep.Handle(ctx, simulator.NewRequest(map[string]string{"companyId": "GAMCO-001"}))
//	fmt.Println(resp.Status, string(resp.Payload()))
package simulator
