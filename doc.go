// Package upstream_simulators fornece simuladores HTTP das APIs externas consumidas
// pelo serviço de conciliação (banco, gaming, receita federal e licenças).
//
// Visão Geral:
// Cada simulador é declarado como um registro de configuração (rota, falha injetada,
// parâmetros obrigatórios, fixture e regra de matching) e servido por um motor
// comum. Uma requisição percorre sempre a mesma sequência:
//
//  1. Falha injetada (tentativa de Bernoulli com probabilidade configurável).
//  2. Validação dos parâmetros obrigatórios (400).
//  3. Gate da rota, sem leitura da fixture (404).
//  4. Leitura da fixture (500 quando ausente ou malformada).
//  5. Matching entre parâmetros e campos da fixture (200 com o documento bruto, ou 404).
//
// Sub-Pacotes Principais:
//
// 1. pkg/simulator:
//   - Endpoint, FaultPolicy, RandomSource e as variantes de MatchingRule.
//
// 2. pkg/fixture:
//   - Leitura de fixtures de arquivo local, S3, DynamoDB, SSM, Secrets Manager,
//     Redis e Postgres.
//
// 3. pkg/config:
//   - Carregamento YAML/JSON com interpolação ${env.X}, ${ssm.X} e ${secret.X},
//     defaults e validação.
//
// 4. pkg/transport:
//   - Servidores HTTP (gorilla/mux) por porta e adaptador para AWS Lambda.
//
// Exemplo de Início Rápido:
//
//	go run ./cmd/simulator -fixtures ./fixtures
//	curl 'http://localhost:5004/sim/v1/payments/transactions?companyId=GAMCO-001'
package upstream_simulators
