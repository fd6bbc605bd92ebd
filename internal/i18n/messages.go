package i18n

var portuguese = map[string]string{
	"auth.errors.emailExists":        "Este e-mail já está em uso.",
	"auth.errors.invalidCredentials": "E-mail ou senha inválidos.",
	"auth.errors.tooManyAttempts":    "Muitas tentativas. Tente novamente mais tarde.",
	"auth.errors.generic":            "Não foi possível concluir a autenticação. Tente novamente.",
	"auth.errors.notLoggedIn":        "Faça login para continuar.",
	"auth.login.success":             "Login realizado como %s.",
	"auth.register.success":          "Conta criada para %s.",
	"auth.logout.success":            "Sessão encerrada.",
	"auth.whoami":                    "Conectado como %s (idioma: %s).",

	"moto.errors.generic":     "Não foi possível salvar a moto. Tente novamente.",
	"moto.created":            "Moto %s cadastrada.",
	"moto.updated":            "Moto %s atualizada.",
	"moto.deleted":            "Moto removida.",
	"inventory.errors.load":   "Erro ao carregar o inventário.",
	"inventory.errors.delete": "Erro ao excluir a moto.",
	"inventory.empty":         "Nenhuma moto encontrada.",

	"stock.errors.generic": "Ocorreu um erro com o estoque.",
	"stock.errors.load":    "Erro ao carregar os estoques.",
	"stock.errors.create":  "Erro ao criar o estoque.",
	"stock.errors.update":  "Erro ao atualizar o estoque.",
	"stock.errors.delete":  "Erro ao excluir o estoque.",
	"stock.created":        "Estoque %s criado.",
	"stock.updated":        "Estoque %s atualizado.",
	"stock.deleted":        "Estoque removido.",
	"stock.empty":          "Nenhum estoque encontrado.",

	"user.errors.notFound":    "Usuário não encontrado.",
	"user.errors.load":        "Erro ao carregar o perfil.",
	"user.errors.update":      "Erro ao atualizar o perfil.",
	"user.errors.invalidName": "Nome inválido.",
	"user.updated":            "Perfil atualizado.",
	"user.profile":            "E-mail: %s\nNome: %s",

	"push.newStock.title": "Novo estoque",
	"push.newStock.body":  "O estoque %s foi cadastrado.",

	"validation.title.required":    "Informe o título",
	"validation.subTitle.required": "Selecione a categoria",
	"validation.plate.required":    "Informe a placa",
	"validation.plate.min":         "Mínimo 6 caracteres",
	"validation.name.required":     "Informe o nome",
	"validation.quantity.invalid":  "Quantidade inválida",
	"validation.quantity.min":      "Não pode ser negativa",
	"validation.quantity.required": "Informe a quantidade",
	"validation.email.required":    "Informe seu e-mail",
	"validation.email.email":       "E-mail inválido",
	"validation.senha.required":    "Informe a senha",
	"validation.senha.min":         "Mínimo de 5 caracteres",
	"validation.nome.min":          "Mínimo de 2 caracteres",
	"validation.invalid":           "Dados inválidos",
	"validation.stockId.exists":    "Estoque não encontrado",

	"home.models.pop":   "Econômica e ágil para o dia a dia.",
	"home.models.e":     "Elétrica, silenciosa e sem emissões.",
	"home.models.sport": "Mais potência para longas distâncias.",

	"iot.title":           "Painel IoT",
	"iot.noMotos":         "Nenhuma moto com telemetria.",
	"iot.selected":        "Moto selecionada: %s",
	"iot.status":          "Status",
	"iot.battery":         "Bateria",
	"iot.accel":           "Aceleração",
	"iot.location":        "Localização",
	"iot.map":             "Mapa",
	"iot.events":          "Eventos recentes",
	"iot.noEvents":        "Sem eventos para esta moto.",
	"iot.noData":          "sem dados",
	"iot.alertSent":       "Alerta enviado para %s.",
	"iot.commandSent":     "Comando %s enviado para %s.",
	"iot.errors.load":     "Erro ao carregar os dados IoT.",
	"iot.errors.alert":    "Erro ao enviar o alerta.",
	"iot.errors.command":  "Erro ao enviar o comando.",
	"iot.errors.notFound": "Moto não encontrada.",
	"iot.alertDefault":    "Alerta de problema na moto %s! Foi detectada uma condição de risco.",
	"iot.level.ok":        "normal",
	"iot.level.warning":   "atenção",
	"iot.level.critical":  "crítico",
	"iot.level.unknown":   "desconhecido",

	"table.id":       "ID",
	"table.title":    "Título",
	"table.category": "Categoria",
	"table.plate":    "Placa",
	"table.stock":    "Estoque",
	"table.name":     "Nome",
	"table.quantity": "Quantidade",
	"table.location": "Local",
	"table.moto":     "Moto",
	"table.type":     "Tipo",
	"table.reason":   "Motivo",
	"table.time":     "Horário",

	"lang.changed":         "Idioma alterado para %s.",
	"lang.unsupported":     "Idioma não suportado: %s. Use: %s.",
	"iot.deviceRegistered": "Dispositivo registrado para alertas.",
	"iot.healthy":          "API IoT disponível.",
	"about.text":           "fleetctl %s: gestão da frota Mottu, estoques e telemetria.",

	"alert.push.title":  "Alerta da frota",
	"alert.body":        "⚠️ Moto %s: %s",
	"alert.reason":      "Motivo: %s",
	"ops.help":          "Comandos: /status <moto>, /maintenance <moto>, /release <moto>, /alert <moto> <mensagem>, /report",
	"ops.status":        "%s: %s",
	"ops.battery":       "Bateria: %.1f%%",
	"ops.reasons":       "Motivos: %s",
	"ops.commandSent":   "Comando %s enviado para %s.",
	"ops.alertRecorded": "Alerta registrado para %s.",
	"ops.alertDefault":  "Alerta enviado pelo operador via WhatsApp.",
	"ops.notFound":      "Moto %s não encontrada.",
	"ops.empty":         "Nenhuma moto com status registrado.",
	"ops.missingMoto":   "Informe a moto. Ex.: /status MOTO1",
	"ops.failed":        "Não foi possível executar o comando.",
	"report.title":      "Relatório da frota %s",
	"report.inventory":  "Motos: %d | Estoques: %d",
	"report.statusLine": "%s: %d",
	"report.lowBattery": "Bateria baixa: %d",
	"report.events":     "Eventos nas últimas 24h: %d",
	"report.noEvents":   "Nenhum evento nas últimas 24h.",
}

var spanish = map[string]string{
	"auth.errors.emailExists":        "Este correo ya está en uso.",
	"auth.errors.invalidCredentials": "Correo o contraseña inválidos.",
	"auth.errors.tooManyAttempts":    "Demasiados intentos. Inténtalo más tarde.",
	"auth.errors.generic":            "No fue posible completar la autenticación. Inténtalo de nuevo.",
	"auth.errors.notLoggedIn":        "Inicia sesión para continuar.",
	"auth.login.success":             "Sesión iniciada como %s.",
	"auth.register.success":          "Cuenta creada para %s.",
	"auth.logout.success":            "Sesión cerrada.",
	"auth.whoami":                    "Conectado como %s (idioma: %s).",

	"moto.errors.generic":     "No fue posible guardar la moto. Inténtalo de nuevo.",
	"moto.created":            "Moto %s registrada.",
	"moto.updated":            "Moto %s actualizada.",
	"moto.deleted":            "Moto eliminada.",
	"inventory.errors.load":   "Error al cargar el inventario.",
	"inventory.errors.delete": "Error al eliminar la moto.",
	"inventory.empty":         "No se encontraron motos.",

	"stock.errors.generic": "Ocurrió un error con el stock.",
	"stock.errors.load":    "Error al cargar los stocks.",
	"stock.errors.create":  "Error al crear el stock.",
	"stock.errors.update":  "Error al actualizar el stock.",
	"stock.errors.delete":  "Error al eliminar el stock.",
	"stock.created":        "Stock %s creado.",
	"stock.updated":        "Stock %s actualizado.",
	"stock.deleted":        "Stock eliminado.",
	"stock.empty":          "No se encontraron stocks.",

	"user.errors.notFound":    "Usuario no encontrado.",
	"user.errors.load":        "Error al cargar el perfil.",
	"user.errors.update":      "Error al actualizar el perfil.",
	"user.errors.invalidName": "Nombre inválido.",
	"user.updated":            "Perfil actualizado.",
	"user.profile":            "Correo: %s\nNombre: %s",

	"push.newStock.title": "Nuevo stock",
	"push.newStock.body":  "El stock %s fue registrado.",

	"validation.title.required":    "Ingresa el título",
	"validation.subTitle.required": "Selecciona la categoría",
	"validation.plate.required":    "Ingresa la matrícula",
	"validation.plate.min":         "Mínimo 6 caracteres",
	"validation.name.required":     "Ingresa el nombre",
	"validation.quantity.invalid":  "Cantidad inválida",
	"validation.quantity.min":      "No puede ser negativa",
	"validation.quantity.required": "Ingresa la cantidad",
	"validation.email.required":    "Ingresa tu correo",
	"validation.email.email":       "Correo inválido",
	"validation.senha.required":    "Ingresa la contraseña",
	"validation.senha.min":         "Mínimo de 5 caracteres",
	"validation.nome.min":          "Mínimo de 2 caracteres",
	"validation.invalid":           "Datos inválidos",
	"validation.stockId.exists":    "Stock no encontrado",

	"home.models.pop":   "Económica y ágil para el día a día.",
	"home.models.e":     "Eléctrica, silenciosa y sin emisiones.",
	"home.models.sport": "Más potencia para largas distancias.",

	"iot.title":           "Panel IoT",
	"iot.noMotos":         "Ninguna moto con telemetría.",
	"iot.selected":        "Moto seleccionada: %s",
	"iot.status":          "Estado",
	"iot.battery":         "Batería",
	"iot.accel":           "Aceleración",
	"iot.location":        "Ubicación",
	"iot.map":             "Mapa",
	"iot.events":          "Eventos recientes",
	"iot.noEvents":        "Sin eventos para esta moto.",
	"iot.noData":          "sin datos",
	"iot.alertSent":       "Alerta enviada a %s.",
	"iot.commandSent":     "Comando %s enviado a %s.",
	"iot.errors.load":     "Error al cargar los datos IoT.",
	"iot.errors.alert":    "Error al enviar la alerta.",
	"iot.errors.command":  "Error al enviar el comando.",
	"iot.errors.notFound": "Moto no encontrada.",
	"iot.alertDefault":    "¡Alerta de problema en la moto %s! Se detectó una condición de riesgo.",
	"iot.level.ok":        "normal",
	"iot.level.warning":   "atención",
	"iot.level.critical":  "crítico",
	"iot.level.unknown":   "desconocido",

	"table.id":       "ID",
	"table.title":    "Título",
	"table.category": "Categoría",
	"table.plate":    "Matrícula",
	"table.stock":    "Stock",
	"table.name":     "Nombre",
	"table.quantity": "Cantidad",
	"table.location": "Ubicación",
	"table.moto":     "Moto",
	"table.type":     "Tipo",
	"table.reason":   "Motivo",
	"table.time":     "Hora",

	"lang.changed":         "Idioma cambiado a %s.",
	"lang.unsupported":     "Idioma no soportado: %s. Usa: %s.",
	"iot.deviceRegistered": "Dispositivo registrado para alertas.",
	"iot.healthy":          "API IoT disponible.",
	"about.text":           "fleetctl %s: gestión de la flota Mottu, stocks y telemetría.",

	"alert.push.title":  "Alerta de la flota",
	"alert.body":        "⚠️ Moto %s: %s",
	"alert.reason":      "Motivo: %s",
	"ops.help":          "Comandos: /status <moto>, /maintenance <moto>, /release <moto>, /alert <moto> <mensaje>, /report",
	"ops.status":        "%s: %s",
	"ops.battery":       "Batería: %.1f%%",
	"ops.reasons":       "Motivos: %s",
	"ops.commandSent":   "Comando %s enviado a %s.",
	"ops.alertRecorded": "Alerta registrada para %s.",
	"ops.alertDefault":  "Alerta enviada por el operador vía WhatsApp.",
	"ops.notFound":      "Moto %s no encontrada.",
	"ops.empty":         "Ninguna moto con estado registrado.",
	"ops.missingMoto":   "Indica la moto. Ej.: /status MOTO1",
	"ops.failed":        "No fue posible ejecutar el comando.",
	"report.title":      "Informe de la flota %s",
	"report.inventory":  "Motos: %d | Stocks: %d",
	"report.statusLine": "%s: %d",
	"report.lowBattery": "Batería baja: %d",
	"report.events":     "Eventos en las últimas 24h: %d",
	"report.noEvents":   "Ningún evento en las últimas 24h.",
}
